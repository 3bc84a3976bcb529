package testutil

import (
	"io"
	"net/http"
	"testing"
)

func getBody(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return resp.StatusCode, out
}

func TestFakeAPIPaginates(t *testing.T) {
	api := NewFakeAPI(t)
	api.Seed("/residents/", 25, func(i int, r Record) {
		r["purok"] = "Purok 1"
		if i%2 == 0 {
			r["purok"] = "Purok 2"
		}
	})

	code, body := getBody(t, api.URL+"/residents/?page=3&page_size=10")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["count"].(float64) != 25 || len(body["results"].([]any)) != 5 {
		t.Errorf("body = %v", body)
	}
	if body["next"] != nil || body["previous"] == nil {
		t.Errorf("links = %v / %v", body["next"], body["previous"])
	}

	_, body = getBody(t, api.URL+"/residents/?purok=Purok+2&sort_by=id&sort_order=desc")
	first := body["results"].([]any)[0].(map[string]any)
	if body["count"].(float64) != 12 || first["id"].(float64) != 24 {
		t.Errorf("filtered body = %v", body)
	}

	code, body = getBody(t, api.URL+"/residents/?page=9")
	if code != http.StatusNotFound || body["detail"] != "Invalid page." {
		t.Errorf("out of range = %d %v", code, body)
	}
	if api.Hits("/residents/") != 3 {
		t.Errorf("hits = %d", api.Hits("/residents/"))
	}
}

func TestFakeAPIEmptyFirstPage(t *testing.T) {
	api := NewFakeAPI(t)
	api.Set("/households/")

	code, body := getBody(t, api.URL+"/households/?page=1")
	if code != http.StatusOK || body["count"].(float64) != 0 {
		t.Errorf("empty = %d %v", code, body)
	}
}

func TestFakeAPIFailNext(t *testing.T) {
	api := NewFakeAPI(t)
	api.Set("/vaccinations/", Record{"id": 1})
	api.FailNext("/vaccinations/", http.StatusServiceUnavailable)

	if code, _ := getBody(t, api.URL+"/vaccinations/"); code != http.StatusServiceUnavailable {
		t.Errorf("first status = %d", code)
	}
	if code, _ := getBody(t, api.URL+"/vaccinations/"); code != http.StatusOK {
		t.Errorf("second status = %d", code)
	}
}
