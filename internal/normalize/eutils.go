package normalize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// NCBI E-utilities endpoints shared by the ClinVar and PubMed normalizers.
// Rate limits are 3 req/sec without an API key, which the fixed
// inter-request delay respects.
const (
	esearchURL  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	esummaryURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esummary.fcgi"
)

type esearchResponse struct {
	ESearchResult struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

func (r esearchResponse) count() int {
	n, err := strconv.Atoi(r.ESearchResult.Count)
	if err != nil {
		return 0
	}
	return n
}

type esummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

// uids returns the ordered UID list from an esummary result envelope.
func (r esummaryResponse) uids() []string {
	raw, ok := r.Result["uids"]
	if !ok {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil
	}
	return ids
}

// entry decodes the summary record for one UID into v.
func (r esummaryResponse) entry(uid string, v any) bool {
	raw, ok := r.Result[uid]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// esearch runs an esearch query against one database.
func (e *Env) esearch(ctx context.Context, db, term string, extra url.Values) (*esearchResponse, error) {
	params := url.Values{}
	params.Set("db", db)
	params.Set("retmode", "json")
	params.Set("term", term)
	for k, vals := range extra {
		for _, v := range vals {
			params.Add(k, v)
		}
	}
	if key := e.Cfg.Sources.NCBIAPIKey; key != "" {
		params.Set("api_key", key)
	}
	var out esearchResponse
	if err := e.Client.GetJSON(ctx, esearchURL, params, jsonAccept(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// esummary fetches summaries for a set of UIDs.
func (e *Env) esummary(ctx context.Context, db string, ids []string) (*esummaryResponse, error) {
	params := url.Values{}
	params.Set("db", db)
	params.Set("retmode", "json")
	params.Set("id", joinIDs(ids))
	if key := e.Cfg.Sources.NCBIAPIKey; key != "" {
		params.Set("api_key", key)
	}
	var out esummaryResponse
	if err := e.Client.GetJSON(ctx, esummaryURL, params, jsonAccept(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func joinIDs(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += id
	}
	return out
}

func jsonAccept() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	return h
}
