package coachapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coocood/freecache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observerMock struct {
	mu    sync.Mutex
	calls map[string]string
}

func (o *observerMock) ObserveCoachCall(endpoint, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.calls == nil {
		o.calls = map[string]string{}
	}
	o.calls[endpoint] = outcome
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", srv.Client(), freecache.NewCache(1024*1024))
}

func TestClient_Ask(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/ask", r.URL.Path)

		var req AskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "u1", req.UserID)
		assert.Equal(t, "how much protein?", req.Query)
		assert.NotNil(t, req.History)
		assert.Equal(t, "diet", req.Type)

		_, _ = w.Write([]byte(`{"answer":"about 120g"}`))
	})

	answer, err := c.Ask(context.Background(), AskRequest{UserID: "u1", Query: "how much protein?", Type: "diet"})
	require.NoError(t, err)
	assert.Equal(t, "about 120g", answer)
}

func TestClient_RemoteError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
	})
	obs := &observerMock{}
	c.WithObserver(obs)

	_, err := c.IdealBMI(context.Background(), "u1")
	var remoteErr *RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, "ideal_bmi", remoteErr.Endpoint)
	assert.Equal(t, http.StatusInternalServerError, remoteErr.StatusCode)
	assert.Contains(t, remoteErr.Body, "boom")
	assert.Equal(t, "error", obs.calls["ideal_bmi"])
}

func TestClient_NoRetry(t *testing.T) {
	var hits int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.RandomFact(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestClient_AnalyzeFood(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/analyze_food", r.URL.Path)
		assert.Equal(t, "https://img.example/a b.jpg", r.URL.Query().Get("image_url"))
		resp := map[string]string{
			"analysis": "```json\n{\"food_name\":\"banana\",\"total_calories\":105,\"protein_g\":1.3,\"carbs_g\":27,\"fat_g\":0.4}\n```",
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	analysis, err := c.AnalyzeFood(context.Background(), "https://img.example/a b.jpg")
	require.NoError(t, err)
	assert.Equal(t, &FoodAnalysis{FoodName: "banana", TotalCalories: 105, ProteinG: 1.3, CarbsG: 27, FatG: 0.4}, analysis)
}

func TestClient_AnalyzeFood_NoJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"analysis":"I cannot see any food"}`))
	})

	_, err := c.AnalyzeFood(context.Background(), "https://img.example/x.jpg")
	assert.ErrorIs(t, err, ErrInvalidAnswer)
}

func TestClient_DeleteTempImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/delete_temp_image", r.URL.Path)
		assert.Equal(t, "temp/abc", r.URL.Query().Get("public_id"))
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	assert.NoError(t, c.DeleteTempImage(context.Background(), "temp/abc"))
}

func TestClient_IdealValues(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/user/u1/bmi":
			_, _ = w.Write([]byte(`{"ideal_bmi":22.5}`))
		case "/api/user/u1/bmr":
			_, _ = w.Write([]byte(`{"ai_response":"slightly low","ideal_bmr":1700}`))
		case "/api/user/reqCal/u1":
			_, _ = w.Write([]byte(`{"req_intake":2100,"percent_chg":-8.5}`))
		case "/api/user/bodyInsights/u1":
			_, _ = w.Write([]byte(`{"insights":[{"title":"Hydration","description":"drink more"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	bmi, err := c.IdealBMI(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, bmi.IdealBMI)
	assert.Equal(t, 22.5, *bmi.IdealBMI)

	bmr, err := c.IdealBMR(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "slightly low", bmr.AIResponse)
	assert.Equal(t, 1700.0, *bmr.IdealBMR)

	intake, err := c.RequiredIntake(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2100.0, *intake.ReqIntake)
	assert.Equal(t, -8.5, *intake.PercentChg)

	insights, err := c.BodyInsights(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []Insight{{Title: "Hydration", Description: "drink more"}}, insights)
}

func TestClient_RatedMeals(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/meals/u1", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"doc_id":"7","meal_name":"eggs","cals":300,"protein":20,"rating":"good","rating_explain":"high protein"}]}`))
	})

	meals, err := c.RatedMeals(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.Equal(t, "good", meals[0].Rating)
	assert.Equal(t, 20.0, meals[0].Protein)
}

func TestClient_SearchRecipes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pasta", r.URL.Query().Get("query"))
		assert.Equal(t, "6", r.URL.Query().Get("number"))
		_, _ = w.Write([]byte(`{"results":[{"id":1,"title":"Carbonara","image":"c.jpg"}]}`))
	})

	recipes, err := c.SearchRecipes(context.Background(), "pasta", 6)
	require.NoError(t, err)
	assert.Equal(t, []Recipe{{ID: 1, Title: "Carbonara", Image: "c.jpg"}}, recipes)
}

func TestClient_SearchRecipes_ErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"quota exceeded"}`))
	})

	_, err := c.SearchRecipes(context.Background(), "pasta", 6)
	assert.ErrorIs(t, err, ErrInvalidAnswer)
}

func TestClient_GuessMacros(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "apple pie", in["name"])
		_, _ = w.Write([]byte(`{"found":true,"name":"apple pie","calories":411,"protein":3.7,"carbs":58,"fat":19,"confidence":0.8}`))
	})

	guess, err := c.GuessMacros(context.Background(), "apple pie")
	require.NoError(t, err)
	assert.True(t, guess.Found)
	assert.Equal(t, 411.0, guess.Calories)
	require.NotNil(t, guess.Confidence)
}

const planJSON = `{"meal_plan":{"breakfast":["oats"],"lunch":["rice and beans"]},"total_daily_macros":{"calories":"1900"}}`

func TestClient_TodayMealPlan_CachedPerDay(t *testing.T) {
	var hits int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/todayFood/u1", r.URL.Path)
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(planJSON))
	})
	now := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	c.WithClock(func() time.Time { return now })
	ctx := context.Background()

	plan, err := c.TodayMealPlan(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"oats"}, plan.Meals["breakfast"])
	assert.False(t, plan.Stale)

	_, err = c.TodayMealPlan(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	now = now.Add(24 * time.Hour)
	_, err = c.TodayMealPlan(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestClient_TodayMealPlan_StaleFallback(t *testing.T) {
	var fail atomic.Bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(planJSON))
	})
	now := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	c.WithClock(func() time.Time { return now })
	ctx := context.Background()

	_, err := c.TodayMealPlan(ctx, "u1")
	require.NoError(t, err)

	fail.Store(true)
	now = now.Add(24 * time.Hour)
	plan, err := c.TodayMealPlan(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, plan.Stale)
	assert.Equal(t, []string{"rice and beans"}, plan.Meals["lunch"])

	_, err = c.TodayMealPlan(ctx, "u2")
	var remoteErr *RemoteError
	assert.True(t, errors.As(err, &remoteErr))
}

func TestClient_TodayMealPlan_ModelFailureNotCached(t *testing.T) {
	var hits int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			_, _ = w.Write([]byte(`{"error":"Model did not return valid JSON."}`))
			return
		}
		_, _ = w.Write([]byte(planJSON))
	})
	ctx := context.Background()

	_, err := c.TodayMealPlan(ctx, "u1")
	assert.ErrorIs(t, err, ErrInvalidAnswer)

	plan, err := c.TodayMealPlan(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, plan.Meals, 2)
}
