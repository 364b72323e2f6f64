package coachapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidAnswer means the backend answered with success but the payload
// holds no usable data.
var ErrInvalidAnswer = errors.New("coach api returned no usable data")

func (c *Client) Ask(ctx context.Context, req AskRequest) (string, error) {
	if req.History == nil {
		req.History = []ChatMessage{}
	}
	var resp struct {
		Answer string `json:"answer"`
	}
	if _, err := c.do(ctx, "ask", http.MethodPost, "/api/ask", nil, req, &resp); err != nil {
		return "", err
	}
	return resp.Answer, nil
}

// AnalyzeFood asks for the nutrition of the food on a hosted image. The model
// answers free text; the JSON object inside it is decoded.
func (c *Client) AnalyzeFood(ctx context.Context, imageURL string) (*FoodAnalysis, error) {
	var resp struct {
		Analysis string `json:"analysis"`
	}
	q := url.Values{"image_url": {imageURL}}
	if _, err := c.do(ctx, "analyze_food", http.MethodPost, "/api/analyze_food", q, nil, &resp); err != nil {
		return nil, err
	}

	obj, ok := extractObject(resp.Analysis)
	if !ok {
		return nil, fmt.Errorf("%w: analysis has no JSON object", ErrInvalidAnswer)
	}
	analysis := &FoodAnalysis{}
	if err := json.Unmarshal([]byte(obj), analysis); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAnswer, err)
	}
	return analysis, nil
}

func (c *Client) DeleteTempImage(ctx context.Context, publicID string) error {
	q := url.Values{"public_id": {publicID}}
	_, err := c.do(ctx, "delete_temp_image", http.MethodDelete, "/api/delete_temp_image", q, nil, nil)
	return err
}

func (c *Client) IdealBMI(ctx context.Context, uid string) (*IdealBMI, error) {
	resp := &IdealBMI{}
	if _, err := c.do(ctx, "ideal_bmi", http.MethodGet, "/api/user/"+url.PathEscape(uid)+"/bmi", nil, nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) IdealBMR(ctx context.Context, uid string) (*IdealBMR, error) {
	resp := &IdealBMR{}
	if _, err := c.do(ctx, "ideal_bmr", http.MethodGet, "/api/user/"+url.PathEscape(uid)+"/bmr", nil, nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) RequiredIntake(ctx context.Context, uid string) (*CalorieIntake, error) {
	resp := &CalorieIntake{}
	if _, err := c.do(ctx, "req_cal", http.MethodGet, "/api/user/reqCal/"+url.PathEscape(uid), nil, nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) BodyInsights(ctx context.Context, uid string) ([]Insight, error) {
	var resp struct {
		Insights []Insight `json:"insights"`
	}
	if _, err := c.do(ctx, "body_insights", http.MethodGet, "/api/user/bodyInsights/"+url.PathEscape(uid), nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Insights == nil {
		resp.Insights = []Insight{}
	}
	return resp.Insights, nil
}

// RatedMeals returns the latest meals of the user, each rated against the
// user's goal.
func (c *Client) RatedMeals(ctx context.Context, uid string) ([]RatedMeal, error) {
	var resp struct {
		Data []RatedMeal `json:"data"`
	}
	if _, err := c.do(ctx, "rated_meals", http.MethodGet, "/api/user/meals/"+url.PathEscape(uid), nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []RatedMeal{}
	}
	return resp.Data, nil
}

func (c *Client) RandomFact(ctx context.Context) (string, error) {
	var resp struct {
		Fact string `json:"fact"`
	}
	if _, err := c.do(ctx, "random_fact", http.MethodGet, "/api/randomFact", nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Fact, nil
}

func (c *Client) SearchRecipes(ctx context.Context, query string, number int) ([]Recipe, error) {
	q := url.Values{
		"query":  {query},
		"number": {strconv.Itoa(number)},
	}
	var resp struct {
		Results []Recipe `json:"results"`
		Error   string   `json:"error"`
	}
	if _, err := c.do(ctx, "recipes", http.MethodGet, "/api/recipes", q, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAnswer, resp.Error)
	}
	if resp.Results == nil {
		resp.Results = []Recipe{}
	}
	return resp.Results, nil
}

func (c *Client) GuessMacros(ctx context.Context, name string) (*MacroGuess, error) {
	in := map[string]string{"name": name}
	resp := &MacroGuess{}
	if _, err := c.do(ctx, "macros", http.MethodPost, "/api/macros", nil, in, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// extractObject returns the text between the first '{' and the last '}'.
func extractObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}
