package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/valter-silva-au/adorep/pkg/models"
)

const (
	// MaxBatchSize is the most ids the workitemsbatch endpoint accepts per call.
	MaxBatchSize = 200

	// maxErrorBody bounds the response text kept in an APIError, in characters.
	maxErrorBody = 400

	defaultAPIVersion = "7.1"
	defaultTimeout    = 30 * time.Second
)

// APIError is returned for any non-2xx response. No call is retried.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed HTTP=%d: %s", e.Op, e.StatusCode, e.Body)
}

// ADOClient talks to the Azure DevOps work item tracking REST API.
type ADOClient interface {
	// QueryIDs runs the query as WIQL and returns matching ids in server order.
	QueryIDs(ctx context.Context, q models.Query) ([]int, error)

	// GetWorkItems fetches the given fields of ids. Ids the service does not
	// return are absent from the result. A nil fields list fetches every field.
	GetWorkItems(ctx context.Context, ids []int, fields []string) ([]models.WorkItem, error)

	// GetRelations fetches the links of one work item.
	GetRelations(ctx context.Context, id int) ([]models.Relation, error)

	// GetTeamAreaRules fetches the area paths on a team's board.
	GetTeamAreaRules(ctx context.Context, project, team string) ([]models.AreaRule, error)
}

// ADOClientConfig configures NewADOClient.
type ADOClientConfig struct {
	// OrgURL is the organization root, e.g. https://dev.azure.com/eon-seed.
	OrgURL     string
	APIVersion string
	// Token is the personal access token, sent as the basic auth password.
	Token string
	// Timeout bounds every single request.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type adoClient struct {
	orgURL     string
	apiVersion string
	token      string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// NewADOClient creates an ADOClient.
func NewADOClient(cfg ADOClientConfig) ADOClient {
	c := &adoClient{
		orgURL:     strings.TrimRight(cfg.OrgURL, "/"),
		apiVersion: cfg.APIVersion,
		token:      cfg.Token,
		timeout:    cfg.Timeout,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}
	if c.apiVersion == "" {
		c.apiVersion = defaultAPIVersion
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

type wiqlRequest struct {
	Query string `json:"query"`
}

type wiqlResponse struct {
	WorkItems []struct {
		ID int `json:"id"`
	} `json:"workItems"`
}

func (c *adoClient) QueryIDs(ctx context.Context, q models.Query) ([]int, error) {
	endpoint := c.orgURL
	if q.Project != "" {
		endpoint += "/" + url.PathEscape(q.Project)
	}
	endpoint += "/_apis/wit/wiql?api-version=" + c.apiVersion

	var resp wiqlResponse
	if err := c.doJSON(ctx, "WIQL", http.MethodPost, endpoint, wiqlRequest{Query: BuildWIQL(q)}, &resp); err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(resp.WorkItems))
	for _, w := range resp.WorkItems {
		ids = append(ids, w.ID)
	}
	return ids, nil
}

type batchRequest struct {
	IDs         []int    `json:"ids"`
	Fields      []string `json:"fields,omitempty"`
	ErrorPolicy string   `json:"errorPolicy"`
}

// With errorPolicy "omit" the service answers null for ids it cannot return.
type batchResponse struct {
	Value []*models.WorkItem `json:"value"`
}

func (c *adoClient) GetWorkItems(ctx context.Context, ids []int, fields []string) ([]models.WorkItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	endpoint := c.orgURL + "/_apis/wit/workitemsbatch?api-version=" + c.apiVersion
	var items []models.WorkItem
	for _, chunk := range chunkIDs(ids, MaxBatchSize) {
		var resp batchResponse
		req := batchRequest{IDs: chunk, Fields: fields, ErrorPolicy: "omit"}
		if err := c.doJSON(ctx, "workitemsbatch", http.MethodPost, endpoint, req, &resp); err != nil {
			return nil, err
		}
		for _, it := range resp.Value {
			if it != nil {
				items = append(items, *it)
			}
		}
	}
	return items, nil
}

func (c *adoClient) GetRelations(ctx context.Context, id int) ([]models.Relation, error) {
	endpoint := fmt.Sprintf("%s/_apis/wit/workitems/%d?$expand=relations&api-version=%s", c.orgURL, id, c.apiVersion)

	var item models.WorkItem
	if err := c.doJSON(ctx, "workitem relations", http.MethodGet, endpoint, nil, &item); err != nil {
		return nil, err
	}
	return item.Relations, nil
}

type teamFieldValuesResponse struct {
	DefaultValue string `json:"defaultValue"`
	Values       []struct {
		Value           string `json:"value"`
		IncludeChildren bool   `json:"includeChildren"`
	} `json:"values"`
}

func (c *adoClient) GetTeamAreaRules(ctx context.Context, project, team string) ([]models.AreaRule, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/_apis/work/teamsettings/teamfieldvalues?api-version=%s",
		c.orgURL, url.PathEscape(project), url.PathEscape(team), c.apiVersion)

	var resp teamFieldValuesResponse
	if err := c.doJSON(ctx, "teamfieldvalues", http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	rules := make([]models.AreaRule, 0, len(resp.Values))
	for _, v := range resp.Values {
		rules = append(rules, models.AreaRule{BasePath: v.Value, IncludeDescendants: v.IncludeChildren})
	}
	return rules, nil
}

// doJSON sends body as JSON (when non-nil) and decodes a 2xx response into out.
func (c *adoClient) doJSON(ctx context.Context, op, method, endpoint string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", op, err)
	}
	req.SetBasicAuth("", c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", op, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("ado request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// UTF-8 needs at most 4 bytes per character.
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4*maxErrorBody))
		return &APIError{Op: op, StatusCode: resp.StatusCode, Body: truncateRunes(string(text), maxErrorBody)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", op, err)
	}
	return nil
}

// truncateRunes keeps the first n characters of s.
func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
