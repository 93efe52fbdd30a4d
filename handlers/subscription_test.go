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

func subscribe(t *testing.T, h *DBHandler, user *models.User, collectionID uint) *httptest.ResponseRecorder {
	t.Helper()
	id := strconv.Itoa(int(collectionID))
	req := asUser(httptest.NewRequest("POST", "/collections/subscribe/"+id, nil), user)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.SubscribeToCollection(rec, req)
	return rec
}

func TestSubscribeCopiesPublicCollection(t *testing.T) {
	h := newTestHandler(t)
	alice := createTestUser(t, h.DB, "alice")
	bob := createTestUser(t, h.DB, "bob")
	source := createTestCollection(t, h, alice, "Spanish Verbs", models.StatusPublic)
	require.NoError(t, h.Create(&models.Item{Name: "hablar", CollectionID: source.ID}).Error)
	require.NoError(t, h.Create(&models.Item{Name: "comer", CollectionID: source.ID}).Error)

	rec := subscribe(t, h, bob, source.ID)
	require.Equal(t, http.StatusCreated, rec.Code)

	var copy models.Collection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &copy))
	assert.NotEqual(t, source.ID, copy.ID)
	assert.Equal(t, source.Name, copy.Name)
	assert.Equal(t, source.Description, copy.Description)
	assert.Equal(t, source.Category, copy.Category)
	assert.Equal(t, models.StatusPrivate, copy.Status)
	assert.Equal(t, bob.ID, copy.UserID)

	// The copy carries its own rows for the source's items.
	var items []models.Item
	require.NoError(t, h.Where("collection_id = ?", copy.ID).Find(&items).Error)
	require.Len(t, items, 2)
	assert.ElementsMatch(t, []string{"hablar", "comer"}, []string{items[0].Name, items[1].Name})

	var sourceCount int64
	require.NoError(t, h.Model(&models.Item{}).Where("collection_id = ?", source.ID).Count(&sourceCount).Error)
	assert.EqualValues(t, 2, sourceCount)
}

func TestSubscribeTwiceReturnsConflict(t *testing.T) {
	h := newTestHandler(t)
	alice := createTestUser(t, h.DB, "alice")
	bob := createTestUser(t, h.DB, "bob")
	source := createTestCollection(t, h, alice, "Spanish Verbs", models.StatusPublic)

	require.Equal(t, http.StatusCreated, subscribe(t, h, bob, source.ID).Code)
	assert.Equal(t, http.StatusBadRequest, subscribe(t, h, bob, source.ID).Code)

	var count int64
	require.NoError(t, h.Model(&models.Collection{}).Where("user_id = ? AND name = ?", bob.ID, source.Name).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSubscribeToPrivateOrMissingCollection(t *testing.T) {
	h := newTestHandler(t)
	alice := createTestUser(t, h.DB, "alice")
	bob := createTestUser(t, h.DB, "bob")
	private := createTestCollection(t, h, alice, "Secret", models.StatusPrivate)

	assert.Equal(t, http.StatusNotFound, subscribe(t, h, bob, private.ID).Code)
	assert.Equal(t, http.StatusNotFound, subscribe(t, h, bob, 9999).Code)
}

func TestCheckSubscription(t *testing.T) {
	h := newTestHandler(t)
	alice := createTestUser(t, h.DB, "alice")
	bob := createTestUser(t, h.DB, "bob")
	source := createTestCollection(t, h, alice, "Spanish Verbs", models.StatusPublic)

	check := func(user *models.User) map[string]bool {
		id := strconv.Itoa(int(source.ID))
		req := asUser(httptest.NewRequest("GET", "/collections/check-subscription/"+id, nil), user)
		req.SetPathValue("id", id)
		rec := httptest.NewRecorder()
		h.CheckSubscription(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var result map[string]bool
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		return result
	}

	assert.False(t, check(bob)["subscribed"])
	require.Equal(t, http.StatusCreated, subscribe(t, h, bob, source.ID).Code)
	assert.True(t, check(bob)["subscribed"])
}

func TestCheckSubscriptionsBatch(t *testing.T) {
	h := newTestHandler(t)
	alice := createTestUser(t, h.DB, "alice")
	bob := createTestUser(t, h.DB, "bob")
	verbs := createTestCollection(t, h, alice, "Spanish Verbs", models.StatusPublic)
	nouns := createTestCollection(t, h, alice, "French Nouns", models.StatusPublic)
	require.Equal(t, http.StatusCreated, subscribe(t, h, bob, verbs.ID).Code)

	body, err := json.Marshal(map[string][]uint{
		"collection_ids": {verbs.ID, nouns.ID, 9999},
	})
	require.NoError(t, err)

	req := asUser(httptest.NewRequest("POST", "/collections/check-subscriptions-batch", strings.NewReader(string(body))), bob)
	rec := httptest.NewRecorder()
	h.CheckSubscriptionsBatch(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result[strconv.Itoa(int(verbs.ID))])
	assert.False(t, result[strconv.Itoa(int(nouns.ID))])
	assert.False(t, result["9999"])
}
