package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classcollect/classcollect-api/models"
)

func TestSequenceCRUD(t *testing.T) {
	h := newTestHandler(t)
	alice := createTestUser(t, h.DB, "alice")

	body := `{"name":"Week 1","description":"a b c d"}`
	rec := httptest.NewRecorder()
	h.CreateSequence(rec, asUser(httptest.NewRequest("POST", "/sequences", strings.NewReader(body)), alice))
	require.Equal(t, http.StatusCreated, rec.Code)

	var sequence models.Sequence
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sequence))
	assert.Equal(t, "Week 1", sequence.Name)
	id := strconv.Itoa(int(sequence.ID))

	updateBody := `{"description":"a b c d e"}`
	req := asUser(httptest.NewRequest("PUT", "/sequences/"+id, strings.NewReader(updateBody)), alice)
	req.SetPathValue("id", id)
	rec = httptest.NewRecorder()
	h.UpdateSequence(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sequence))
	assert.Equal(t, "Week 1", sequence.Name)
	assert.Equal(t, "a b c d e", sequence.Description)

	req = asUser(httptest.NewRequest("DELETE", "/sequences/"+id, nil), alice)
	req.SetPathValue("id", id)
	rec = httptest.NewRecorder()
	h.DeleteSequence(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, h.Model(&models.Sequence{}).Where("user_id = ?", alice.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSequenceOwnership(t *testing.T) {
	h := newTestHandler(t)
	alice := createTestUser(t, h.DB, "alice")
	bob := createTestUser(t, h.DB, "bob")

	sequence := models.Sequence{Name: "Week 1", UserID: alice.ID}
	require.NoError(t, h.Create(&sequence).Error)
	id := strconv.Itoa(int(sequence.ID))

	req := asUser(httptest.NewRequest("DELETE", "/sequences/"+id, nil), bob)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.DeleteSequence(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = asUser(httptest.NewRequest("PUT", "/sequences/999", strings.NewReader(`{"name":"x"}`)), bob)
	req.SetPathValue("id", "999")
	rec = httptest.NewRecorder()
	h.UpdateSequence(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
