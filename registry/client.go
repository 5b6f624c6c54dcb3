package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"

	"github.com/ruteri/sites-portal-backend/interfaces"
)

// DefaultBatchSize is the largest number of ids sent in one sui_multiGetObjects call.
const DefaultBatchSize = 50

// ClientConfig configures a SuiClient.
type ClientConfig struct {
	// Endpoints are full node RPC URLs, tried in order.
	Endpoints []string

	// RateLimit caps registry calls per second. Zero disables limiting.
	RateLimit float64
	Burst     int

	// BatchSize bounds sui_multiGetObjects requests. Defaults to DefaultBatchSize.
	BatchSize int

	// CallTimeout bounds each RPC call. Zero means only the caller's context applies.
	CallTimeout time.Duration
}

type endpoint struct {
	url    string
	client *rpc.Client
}

// SuiClient implements interfaces.RegistryClient over JSON-RPC.
type SuiClient struct {
	endpoints   []endpoint
	limiter     *rate.Limiter
	batchSize   int
	callTimeout time.Duration
	log         *slog.Logger
}

// NewSuiClient dials every configured endpoint.
func NewSuiClient(ctx context.Context, cfg ClientConfig, log *slog.Logger) (*SuiClient, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, errors.New("no registry RPC endpoints configured")
	}

	c := &SuiClient{
		batchSize:   cfg.BatchSize,
		callTimeout: cfg.CallTimeout,
		log:         log,
	}
	if c.batchSize <= 0 {
		c.batchSize = DefaultBatchSize
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	for _, url := range cfg.Endpoints {
		client, err := rpc.DialContext(ctx, url)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("could not dial registry endpoint %s: %w", url, err)
		}
		c.endpoints = append(c.endpoints, endpoint{url: url, client: client})
	}

	return c, nil
}

// Close releases all endpoint connections.
func (c *SuiClient) Close() {
	for _, ep := range c.endpoints {
		ep.client.Close()
	}
}

// call invokes method on the first endpoint that can be reached. A JSON-RPC
// error from a node is returned as is, transport failures move on to the
// next endpoint.
func (c *SuiClient) call(ctx context.Context, result any, method string, args ...any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %s: %w", interfaces.ErrUpstreamUnavailable, method, err)
		}
	}

	var lastErr error
	for _, ep := range c.endpoints {
		err := c.callEndpoint(ctx, ep, result, method, args...)
		if err == nil {
			return nil
		}

		var rpcErr rpc.Error
		if errors.As(err, &rpcErr) {
			return fmt.Errorf("%s on %s: %w", method, ep.url, err)
		}

		lastErr = err
		if ctx.Err() != nil {
			break
		}
		c.log.Warn("Registry endpoint unreachable", slog.String("endpoint", ep.url), slog.String("method", method), "err", err)
	}

	return fmt.Errorf("%w: %s: %w", interfaces.ErrUpstreamUnavailable, method, lastErr)
}

func (c *SuiClient) callEndpoint(ctx context.Context, ep endpoint, result any, method string, args ...any) error {
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}
	return ep.client.CallContext(ctx, result, method, args...)
}

// GetObject fetches one object with its type and content.
func (c *SuiClient) GetObject(ctx context.Context, id interfaces.ObjectID) (*interfaces.ObjectRecord, error) {
	var resp ObjectResponse
	if err := c.call(ctx, &resp, "sui_getObject", id.Hex(), defaultObjectOptions); err != nil {
		return nil, err
	}
	return toObjectRecord(id, &resp)
}

// GetDynamicFields fetches one page of parentID's children.
func (c *SuiClient) GetDynamicFields(ctx context.Context, parentID interfaces.ObjectID, cursor *string) (*interfaces.DynamicFieldPage, error) {
	var resp DynamicFieldsPage
	if err := c.call(ctx, &resp, "suix_getDynamicFields", parentID.Hex(), cursor); err != nil {
		return nil, err
	}

	page := &interfaces.DynamicFieldPage{
		Entries:     make([]interfaces.DynamicFieldEntry, 0, len(resp.Data)),
		NextCursor:  resp.NextCursor,
		HasNextPage: resp.HasNextPage,
	}
	for _, info := range resp.Data {
		childID, err := interfaces.NewObjectIDFromHex(info.ObjectID)
		if err != nil {
			return nil, fmt.Errorf("%w: dynamic field of %s has invalid object id %q: %w", interfaces.ErrMalformedObject, parentID, info.ObjectID, err)
		}
		page.Entries = append(page.Entries, interfaces.DynamicFieldEntry{
			Name:       info.Name,
			ObjectType: info.ObjectType,
			ObjectID:   childID,
		})
	}
	return page, nil
}

// MultiGetObjects fetches ids in as few calls as the batch size allows.
func (c *SuiClient) MultiGetObjects(ctx context.Context, ids []interfaces.ObjectID) ([]interfaces.ObjectResult, error) {
	results := make([]interfaces.ObjectResult, 0, len(ids))

	for start := 0; start < len(ids); start += c.batchSize {
		chunk := ids[start:min(start+c.batchSize, len(ids))]

		hexIDs := make([]string, len(chunk))
		for i, id := range chunk {
			hexIDs[i] = id.Hex()
		}

		var resp []ObjectResponse
		if err := c.call(ctx, &resp, "sui_multiGetObjects", hexIDs, defaultObjectOptions); err != nil {
			return nil, err
		}
		if len(resp) != len(chunk) {
			return nil, fmt.Errorf("sui_multiGetObjects returned %d objects for %d ids", len(resp), len(chunk))
		}

		for i, id := range chunk {
			record, err := toObjectRecord(id, &resp[i])
			results = append(results, interfaces.ObjectResult{ObjectID: id, Record: record, Err: err})
		}
	}

	return results, nil
}

// ResolveName returns the object a name-service name points to, or nil if
// the name is not registered.
func (c *SuiClient) ResolveName(ctx context.Context, name string) (*interfaces.ObjectID, error) {
	var address *string
	if err := c.call(ctx, &address, "suix_resolveNameServiceAddress", name); err != nil {
		return nil, err
	}
	if address == nil || *address == "" {
		return nil, nil
	}

	id, err := interfaces.NewObjectIDFromHex(*address)
	if err != nil {
		return nil, fmt.Errorf("name %s resolved to invalid address %q: %w", name, *address, err)
	}
	return &id, nil
}

func toObjectRecord(id interfaces.ObjectID, resp *ObjectResponse) (*interfaces.ObjectRecord, error) {
	if resp.Error != nil {
		if resp.Error.Code == objectNotExists || resp.Error.Code == "deleted" {
			return nil, fmt.Errorf("%w: object %s", interfaces.ErrNotFound, id)
		}
		return nil, fmt.Errorf("object %s: %s %s", id, resp.Error.Code, resp.Error.Error)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: object %s", interfaces.ErrNotFound, id)
	}

	record := &interfaces.ObjectRecord{
		ObjectID: id,
		Version:  resp.Data.Version,
		Type:     resp.Data.Type,
	}
	if content := resp.Data.Content; content != nil {
		record.Fields = content.Fields
		if record.Type == "" {
			record.Type = content.Type
		}
	}
	return record, nil
}
