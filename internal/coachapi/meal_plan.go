package coachapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	log "github.com/sirupsen/logrus"
)

const (
	oneDay            = 24 * 60 * 60
	mealPlanCacheKeep = 7 * oneDay // seconds
	dateLayout        = "2006-01-02"
)

type cachedPlan struct {
	Date    string          `json:"date"`
	Payload json.RawMessage `json:"payload"`
}

// TodayMealPlan returns the meal plan for the current day. A plan fetched
// earlier on the same day is served from the cache. When fetching fails, the
// last cached plan is returned marked as stale.
func (c *Client) TodayMealPlan(ctx context.Context, uid string) (*MealPlan, error) {
	today := c.now().UTC().Format(dateLayout)
	cacheKey := []byte("mealplan::" + uid)

	var cached *cachedPlan
	if cachedBytes, err := c.cache.Get(cacheKey); err == nil {
		cached = &cachedPlan{}
		if err := json.Unmarshal(cachedBytes, cached); err != nil {
			log.Errorf("failed to unmarshal cached meal plan for %s: %s", uid, err)
			cached = nil
		}
	} else {
		log.Tracef("meal plan for %s not in cache: %s", uid, err)
	}

	if cached != nil && cached.Date == today {
		plan, err := decodePlan(cached.Payload)
		if err == nil {
			return plan, nil
		}
		log.Errorf("cached meal plan for %s is broken: %s", uid, err)
	}

	plan, raw, err := c.fetchMealPlan(ctx, uid)
	if err != nil {
		if cached != nil {
			if stale, decodeErr := decodePlan(cached.Payload); decodeErr == nil {
				log.Warnf("meal plan fetch for %s failed, serving plan from %s: %s", uid, cached.Date, err)
				stale.Stale = true
				return stale, nil
			}
		}
		return nil, err
	}

	entry, err := json.Marshal(cachedPlan{Date: today, Payload: raw})
	if err != nil {
		log.Errorf("failed to marshal meal plan cache entry for %s: %s", uid, err)
		return plan, nil
	}
	if err := c.cache.Set(cacheKey, entry, mealPlanCacheKeep); err != nil {
		log.Errorf("failed to write meal plan cache for %s: %s", uid, err)
	}
	return plan, nil
}

func (c *Client) fetchMealPlan(ctx context.Context, uid string) (*MealPlan, []byte, error) {
	raw, err := c.do(ctx, "today_food", http.MethodGet, "/api/todayFood/"+url.PathEscape(uid), nil, nil, nil)
	if err != nil {
		return nil, nil, err
	}

	// the backend reports model failures as {"error": ...} with status 200
	var failure struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &failure); err == nil && failure.Error != "" {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidAnswer, failure.Error)
	}

	plan, err := decodePlan(raw)
	if err != nil {
		return nil, nil, err
	}
	return plan, raw, nil
}

func decodePlan(raw []byte) (*MealPlan, error) {
	plan := &MealPlan{}
	if err := json.Unmarshal(raw, plan); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAnswer, err)
	}
	if len(plan.Meals) == 0 {
		return nil, fmt.Errorf("%w: meal plan is empty", ErrInvalidAnswer)
	}
	return plan, nil
}
