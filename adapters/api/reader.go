package api

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"aivaceo/adapters/coercer"
	"aivaceo/domain/dataset"
	apperrors "aivaceo/internal/errors"
)

// RecordsReader fetches JSON records from a REST endpoint and turns them into a dataset
type RecordsReader struct {
	source     RecordsSource
	httpClient *http.Client
	coercer    *coercer.TypeCoercer
}

// NewRecordsReader creates a reader for a records source
func NewRecordsReader(source RecordsSource, coercion coercer.CoercionConfig) *RecordsReader {
	timeout := source.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if source.MaxPages <= 0 {
		source.MaxPages = 1
	}
	if source.MaxBodyBytes == 0 {
		source.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &RecordsReader{
		source:     source,
		httpClient: &http.Client{Timeout: timeout},
		coercer:    coercer.NewTypeCoercer(coercion),
	}
}

// ReadDataset fetches every page and builds one column per field, in first-seen order
func (r *RecordsReader) ReadDataset(ctx context.Context) (*dataset.Dataset, error) {
	records, err := r.FetchRecords(ctx)
	if err != nil {
		return nil, err
	}
	return RecordsToDataset(records, r.coercer)
}

// FetchRecords retrieves the records of all pages
func (r *RecordsReader) FetchRecords(ctx context.Context) ([]gjson.Result, error) {
	if err := r.source.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	var all []gjson.Result
	cursor := ""

	for page := 0; page < r.source.MaxPages; page++ {
		reqURL, err := r.buildURL(cursor, page)
		if err != nil {
			return nil, err
		}

		body, err := r.fetch(ctx, reqURL)
		if err != nil {
			return nil, err
		}

		records, err := r.parseResponse(body)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
		log.Printf("[RecordsReader] %s page %d: %d records", r.source.Name, page+1, len(records))

		if !r.hasMorePages(len(records)) {
			break
		}
		if r.source.PaginationType == PaginationCursor {
			cursor = r.extractNextCursor(body)
			if cursor == "" {
				break
			}
		}
	}

	log.Printf("[RecordsReader] %s fetched %d records in %.2fms",
		r.source.Name, len(all), float64(time.Since(startTime).Nanoseconds())/1e6)
	return all, nil
}

// buildURL constructs the request URL with pagination parameters
func (r *RecordsReader) buildURL(cursor string, page int) (string, error) {
	u, err := url.Parse(r.source.BaseURL)
	if err != nil {
		return "", apperrors.InvalidInput(fmt.Sprintf("invalid records url: %q", r.source.BaseURL))
	}

	params := u.Query()
	for k, v := range r.source.QueryParams {
		params.Set(k, v)
	}

	switch r.source.PaginationType {
	case PaginationOffset:
		params.Set("offset", strconv.Itoa(page*r.source.PageSize))
		params.Set("limit", strconv.Itoa(r.source.PageSize))
	case PaginationPage:
		params.Set("page", strconv.Itoa(page+1))
		params.Set("per_page", strconv.Itoa(r.source.PageSize))
	case PaginationCursor:
		if cursor != "" {
			params.Set("cursor", cursor)
		}
	}

	u.RawQuery = params.Encode()
	return u.String(), nil
}

func (r *RecordsReader) fetch(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range r.source.Headers {
		req.Header.Set(k, v)
	}

	switch r.source.AuthMethod {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+r.source.AuthToken)
	case AuthAPIKey:
		req.Header.Set("X-API-Key", r.source.AuthToken)
	case AuthBasic:
		req.SetBasicAuth(r.source.Username, r.source.Password)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.ExternalServiceError(r.source.Name, err)
	}
	defer resp.Body.Close()

	// one byte past the limit tells a full body from an oversized one
	limit := r.source.MaxBodyBytes
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, apperrors.ExternalServiceError(r.source.Name,
			fmt.Errorf("response exceeds %d bytes", limit))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.ExternalServiceError(r.source.Name,
			fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200)))
	}
	return body, nil
}

// parseResponse extracts records from the JSON body; a single object counts as one record
func (r *RecordsReader) parseResponse(body []byte) ([]gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, apperrors.InvalidInput("response is not valid JSON")
	}

	data := gjson.ParseBytes(body)
	if r.source.DataPath != "" {
		data = data.Get(r.source.DataPath)
		if !data.Exists() {
			return nil, apperrors.InvalidInput(fmt.Sprintf("data path '%s' not found in response", r.source.DataPath))
		}
	}

	switch {
	case data.IsArray():
		return data.Array(), nil
	case data.IsObject():
		return []gjson.Result{data}, nil
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("data path '%s' is not an array or object", r.source.DataPath))
	}
}

// hasMorePages stops page and offset pagination on a short page
func (r *RecordsReader) hasMorePages(received int) bool {
	switch r.source.PaginationType {
	case PaginationPage, PaginationOffset:
		return received >= r.source.PageSize
	case PaginationCursor:
		return received > 0
	default:
		return false
	}
}

// extractNextCursor extracts cursor for next page
func (r *RecordsReader) extractNextCursor(body []byte) string {
	cursorFields := []string{"next_cursor", "cursor", "next", "continuation_token", "meta.next_cursor"}
	if r.source.CursorPath != "" {
		cursorFields = []string{r.source.CursorPath}
	}

	for _, field := range cursorFields {
		if cursor := gjson.GetBytes(body, field); cursor.Exists() && cursor.String() != "" {
			return cursor.String()
		}
	}
	return ""
}

// RecordsToDataset builds columns from JSON objects. Numeric JSON values stay numeric,
// strings go through the coercer, null and absent fields are missing.
func RecordsToDataset(records []gjson.Result, c *coercer.TypeCoercer) (*dataset.Dataset, error) {
	var order []string
	cells := make(map[string][]gjson.Result)

	for i, record := range records {
		if !record.IsObject() {
			return nil, apperrors.InvalidInput(fmt.Sprintf("record %d is not an object", i))
		}
		record.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			column, ok := cells[name]
			if !ok {
				order = append(order, name)
				column = make([]gjson.Result, len(records))
			}
			column[i] = value
			cells[name] = column
			return true
		})
	}

	columns := make([]*dataset.Column, 0, len(order))
	for _, name := range order {
		col, err := buildColumn(name, cells[name], c)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	return dataset.New(columns...)
}

func buildColumn(name string, values []gjson.Result, c *coercer.TypeCoercer) (*dataset.Column, error) {
	if allNumbers(values) {
		b := dataset.NewColumnBuilder(name, dataset.KindNumeric)
		for _, v := range values {
			if v.Type == gjson.Number {
				b.AppendFloat(v.Float())
			} else {
				b.AppendMissing()
			}
		}
		return b.Build()
	}

	raw := make([]string, len(values))
	for i, v := range values {
		switch v.Type {
		case gjson.Null:
			raw[i] = ""
		case gjson.String:
			raw[i] = v.Str
		default:
			raw[i] = v.Raw
		}
	}

	col, _, err := c.BuildColumn(name, raw)
	return col, err
}

// allNumbers reports whether every present value is a JSON number and at least one exists
func allNumbers(values []gjson.Result) bool {
	seen := false
	for _, v := range values {
		switch v.Type {
		case gjson.Null:
		case gjson.Number:
			seen = true
		default:
			return false
		}
	}
	return seen
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
