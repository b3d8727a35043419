//go:build e2e

package e2e

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleURL = "https://example.com/gardening"

const articleText = `Tomatoes grow best in full sun with consistent watering. Plant seedlings
after the last frost and stake them early so the stems stay upright. Mulch
keeps the soil moist and suppresses weeds through the hot months.

Peppers prefer the same conditions as tomatoes but tolerate drier soil.
Harvest them green or leave them on the plant to ripen and sweeten. Both
crops benefit from a balanced fertilizer applied every few weeks.`

type sourceData struct {
	Fingerprint string   `json:"fingerprint"`
	Kind        string   `json:"kind"`
	Name        string   `json:"name"`
	ChunkCount  int      `json:"chunk_count"`
	Suggestions []string `json:"suggestions"`
	Cached      bool     `json:"cached"`
}

type sessionData struct {
	SessionID   string   `json:"session_id"`
	Fingerprint string   `json:"fingerprint"`
	SourceName  string   `json:"source_name"`
	Suggestions []string `json:"suggestions"`
}

type historyData struct {
	SessionID   string `json:"session_id"`
	Fingerprint string `json:"fingerprint"`
	Turns       []struct {
		Role string `json:"role"`
		Text string `json:"text"`
	} `json:"turns"`
	LastFailure string `json:"last_failure"`
}

func ingestArticle(t *testing.T, env *E2ETestEnv) sourceData {
	t.Helper()

	env.Extractor.pages[articleURL] = articleText

	resp, status, err := env.Post("/sources", map[string]string{"kind": "webpage", "url": articleURL})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, status)

	var src sourceData
	require.NoError(t, json.Unmarshal(resp.Data, &src))
	return src
}

func TestE2E_IngestSource(t *testing.T) {
	env := SetupE2EEnv(t)

	src := ingestArticle(t, env)

	assert.Len(t, src.Fingerprint, 64)
	assert.Equal(t, "webpage", src.Kind)
	assert.Greater(t, src.ChunkCount, 1)
	assert.False(t, src.Cached)
	require.Len(t, src.Suggestions, 2)
	assert.Equal(t, "What is the article about?", src.Suggestions[0])

	t.Run("second ingest is served from cache", func(t *testing.T) {
		resp, status, err := env.Post("/sources", map[string]string{"kind": "webpage", "url": articleURL})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)

		var again sourceData
		require.NoError(t, json.Unmarshal(resp.Data, &again))
		assert.Equal(t, src.Fingerprint, again.Fingerprint)
		assert.True(t, again.Cached)
	})

	t.Run("source appears in the listing", func(t *testing.T) {
		resp, status, err := env.Get("/sources")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)

		var listed []sourceData
		require.NoError(t, json.Unmarshal(resp.Data, &listed))
		require.Len(t, listed, 1)
		assert.Equal(t, src.Fingerprint, listed[0].Fingerprint)
	})

	t.Run("source is fetchable by fingerprint", func(t *testing.T) {
		resp, status, err := env.Get("/sources/" + src.Fingerprint)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)

		var got sourceData
		require.NoError(t, json.Unmarshal(resp.Data, &got))
		assert.Equal(t, src.ChunkCount, got.ChunkCount)
	})
}

func TestE2E_IngestFailure(t *testing.T) {
	env := SetupE2EEnv(t)

	resp, status, err := env.Post("/sources", map[string]string{"kind": "webpage", "url": "https://example.com/missing"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "FETCH_FAILED", resp.Code)

	t.Run("failed build leaves no cache entry", func(t *testing.T) {
		listResp, status, err := env.Get("/sources")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)

		var listed []sourceData
		require.NoError(t, json.Unmarshal(listResp.Data, &listed))
		assert.Empty(t, listed)
	})
}

func TestE2E_AskFlow(t *testing.T) {
	env := SetupE2EEnv(t)

	src := ingestArticle(t, env)

	resp, status, err := env.Post("/sessions", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, status)

	var sess sessionData
	require.NoError(t, json.Unmarshal(resp.Data, &sess))
	require.NotEmpty(t, sess.SessionID)

	t.Run("asking before selecting a source is rejected", func(t *testing.T) {
		events, err := env.Ask(sess.SessionID, "how do tomatoes grow?")
		assert.Error(t, err)
		assert.Empty(t, events)
	})

	resp, status, err = env.Put("/sessions/"+sess.SessionID+"/source", map[string]string{"fingerprint": src.Fingerprint})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	var selected sessionData
	require.NoError(t, json.Unmarshal(resp.Data, &selected))
	assert.Equal(t, src.Fingerprint, selected.Fingerprint)
	assert.Equal(t, src.Suggestions, selected.Suggestions)

	events, err := env.Ask(sess.SessionID, "how do tomatoes grow?")
	require.NoError(t, err)
	require.NotEmpty(t, events)

	assert.Equal(t, "sources", events[0].Event)
	var citations []struct {
		Reference  int     `json:"reference"`
		ChunkIndex int     `json:"chunk_index"`
		Text       string  `json:"text"`
		Score      float32 `json:"score"`
	}
	require.NoError(t, json.Unmarshal(events[0].Data, &citations))
	require.NotEmpty(t, citations)
	assert.Equal(t, 1, citations[0].Reference)

	var answer strings.Builder
	sawDone := false
	for _, event := range events[1:] {
		switch event.Event {
		case "chunk":
			var chunk struct {
				Text string `json:"text"`
			}
			require.NoError(t, json.Unmarshal(event.Data, &chunk))
			answer.WriteString(chunk.Text)
		case "done":
			sawDone = true
			var done struct {
				Response  string `json:"response"`
				SessionID string `json:"session_id"`
			}
			require.NoError(t, json.Unmarshal(event.Data, &done))
			assert.Equal(t, sess.SessionID, done.SessionID)
			assert.Equal(t, answer.String(), done.Response)
		case "error":
			t.Fatalf("unexpected error event: %s", event.Data)
		}
	}
	assert.True(t, sawDone)
	assert.Equal(t, "The answer is 42.", answer.String())

	t.Run("exchange lands in the session history", func(t *testing.T) {
		resp, status, err := env.Get("/sessions/" + sess.SessionID + "/history")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)

		var hist historyData
		require.NoError(t, json.Unmarshal(resp.Data, &hist))
		require.Len(t, hist.Turns, 2)
		assert.Equal(t, "user", hist.Turns[0].Role)
		assert.Equal(t, "how do tomatoes grow?", hist.Turns[0].Text)
		assert.Equal(t, "assistant", hist.Turns[1].Role)
		assert.Equal(t, "The answer is 42.", hist.Turns[1].Text)
		assert.Empty(t, hist.LastFailure)
	})
}

func TestE2E_SwitchingSourceClearsHistory(t *testing.T) {
	env := SetupE2EEnv(t)

	src := ingestArticle(t, env)

	otherURL := "https://example.com/baking"
	env.Extractor.pages[otherURL] = "Bread rises because yeast ferments sugars and releases carbon dioxide into the dough."
	resp, status, err := env.Post("/sources", map[string]string{"kind": "webpage", "url": otherURL})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, status)

	var other sourceData
	require.NoError(t, json.Unmarshal(resp.Data, &other))

	resp, _, err = env.Post("/sessions", nil)
	require.NoError(t, err)
	var sess sessionData
	require.NoError(t, json.Unmarshal(resp.Data, &sess))

	_, status, err = env.Put("/sessions/"+sess.SessionID+"/source", map[string]string{"fingerprint": src.Fingerprint})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	_, err = env.Ask(sess.SessionID, "how do tomatoes grow?")
	require.NoError(t, err)

	_, status, err = env.Put("/sessions/"+sess.SessionID+"/source", map[string]string{"fingerprint": other.Fingerprint})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	resp, status, err = env.Get("/sessions/" + sess.SessionID + "/history")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	var hist historyData
	require.NoError(t, json.Unmarshal(resp.Data, &hist))
	assert.Empty(t, hist.Turns)
	assert.Equal(t, other.Fingerprint, hist.Fingerprint)
}

func TestE2E_SelectUnknownSource(t *testing.T) {
	env := SetupE2EEnv(t)

	resp, _, err := env.Post("/sessions", nil)
	require.NoError(t, err)
	var sess sessionData
	require.NoError(t, json.Unmarshal(resp.Data, &sess))

	errResp, status, err := env.Put("/sessions/"+sess.SessionID+"/source",
		map[string]string{"fingerprint": strings.Repeat("0", 64)})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errResp.Code)
}
