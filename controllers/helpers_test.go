package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	doc := bson.M{"email": "a@example.com", "password": "hunter22"}
	require.NoError(t, hashPassword(doc))

	hashed, ok := doc["password"].(string)
	require.True(t, ok)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hashed), []byte("hunter22")))
}

func TestHashPassword_DropsEmptyOrNonString(t *testing.T) {
	doc := bson.M{"password": ""}
	require.NoError(t, hashPassword(doc))
	assert.NotContains(t, doc, "password")

	doc = bson.M{"password": 1234.0}
	require.NoError(t, hashPassword(doc))
	assert.NotContains(t, doc, "password")

	doc = bson.M{"email": "a@example.com"}
	require.NoError(t, hashPassword(doc))
	assert.Equal(t, bson.M{"email": "a@example.com"}, doc)
}

func TestPathID(t *testing.T) {
	id := primitive.NewObjectID()
	r := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": id.Hex()})
	got, ok := pathID(r)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	r = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "123"})
	_, ok = pathID(r)
	assert.False(t, ok)
}

func TestDecodeDocument(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"_id":"x","hospital":"A"}`))
	doc, err := decodeDocument(r)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"hospital": "A"}, doc)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`null`))
	_, err = decodeDocument(r)
	assert.Error(t, err)
}

func TestNewBase_Defaults(t *testing.T) {
	b := newBase(nil, 0)
	assert.NotNil(t, b.Logger)
	assert.Equal(t, defaultStoreTimeout, b.Timeout)
}
