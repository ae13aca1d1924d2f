package render

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/a11yscan/a11yscan/internal/dom"
)

// CDPOptions configures a connection to a running browser's DevTools
// endpoint. Browser installation and discovery are out of scope; the
// browser must already be listening.
type CDPOptions struct {
	// DebuggerURL is the HTTP endpoint of the browser's remote debugger,
	// e.g. http://127.0.0.1:9222.
	DebuggerURL string
	// NavTimeout is the hard per-page ceiling on navigation plus load.
	NavTimeout time.Duration
}

// CDP is a Renderer backed by the Chrome DevTools Protocol over a
// websocket. One CDP instance owns one browser target and is not safe for
// concurrent use; batch scanning gives each worker its own.
type CDP struct {
	conn     *websocket.Conn
	opts     CDPOptions
	targetID string

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan cdpResult
	waiters map[string][]chan json.RawMessage
	readErr error
	closed  bool
	done    chan struct{}
}

type cdpResult struct {
	result json.RawMessage
	err    error
}

type cdpMessage struct {
	ID     int64           `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *cdpError       `json:"error,omitempty"`
}

type cdpError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *cdpError) Error() string {
	return fmt.Sprintf("cdp error %d: %s", e.Code, e.Message)
}

// NewCDP creates a fresh browser target and attaches to it. The listener
// instrumentation script is installed before any page script runs.
func NewCDP(ctx context.Context, opts CDPOptions) (*CDP, error) {
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 30 * time.Second
	}

	targetID, wsURL, err := newTarget(ctx, opts.DebuggerURL)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial debugger websocket: %w", err)
	}

	c := &CDP{
		conn:     conn,
		opts:     opts,
		targetID: targetID,
		pending:  make(map[int64]chan cdpResult),
		waiters:  make(map[string][]chan json.RawMessage),
		done:     make(chan struct{}),
	}
	go c.readLoop()

	if err := c.call(ctx, "Page.enable", nil, nil); err != nil {
		_ = c.Close()
		return nil, err
	}
	params := map[string]string{"source": dom.InstrumentScript}
	if err := c.call(ctx, "Page.addScriptToEvaluateOnNewDocument", params, nil); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// newTarget asks the browser for a fresh about:blank target.
func newTarget(ctx context.Context, debuggerURL string) (id, wsURL string, err error) {
	endpoint := strings.TrimRight(debuggerURL, "/") + "/json/new?about:blank"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("create browser target: %w", err)
	}
	defer resp.Body.Close()

	var target struct {
		ID    string `json:"id"`
		WSURL string `json:"webSocketDebuggerUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&target); err != nil {
		return "", "", fmt.Errorf("decode target descriptor: %w", err)
	}
	if target.WSURL == "" {
		return "", "", fmt.Errorf("browser returned no websocket debugger url")
	}
	return target.ID, target.WSURL, nil
}

func (c *CDP) readLoop() {
	defer close(c.done)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.failAll(err)
			return
		}
		var msg cdpMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		if msg.ID != 0 {
			c.mu.Lock()
			ch := c.pending[msg.ID]
			delete(c.pending, msg.ID)
			c.mu.Unlock()
			if ch != nil {
				res := cdpResult{result: msg.Result}
				if msg.Error != nil {
					res.err = msg.Error
				}
				ch <- res
			}
			continue
		}

		if msg.Method != "" {
			c.mu.Lock()
			chans := c.waiters[msg.Method]
			delete(c.waiters, msg.Method)
			c.mu.Unlock()
			for _, ch := range chans {
				ch <- msg.Params
			}
		}
	}
}

func (c *CDP) failAll(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readErr = err
	for id, ch := range c.pending {
		delete(c.pending, id)
		ch <- cdpResult{err: err}
	}
	for method, chans := range c.waiters {
		delete(c.waiters, method)
		for _, ch := range chans {
			close(ch)
		}
	}
}

// call sends a command and decodes its result into out (when non-nil).
func (c *CDP) call(ctx context.Context, method string, params any, out any) error {
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return err
		}
		raw = data
	}

	c.mu.Lock()
	if c.readErr != nil {
		err := c.readErr
		c.mu.Unlock()
		return err
	}
	c.nextID++
	id := c.nextID
	ch := make(chan cdpResult, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(cdpMessage{ID: id, Method: method, Params: raw})
	c.writeMu.Unlock()
	if err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return fmt.Errorf("send %s: %w", method, err)
	}

	select {
	case res := <-ch:
		if res.err != nil {
			return fmt.Errorf("%s: %w", method, res.err)
		}
		if out != nil {
			return json.Unmarshal(res.result, out)
		}
		return nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return ctx.Err()
	}
}

// waitEvent registers for the next occurrence of a protocol event.
func (c *CDP) waitEvent(method string) <-chan json.RawMessage {
	ch := make(chan json.RawMessage, 1)
	c.mu.Lock()
	c.waiters[method] = append(c.waiters[method], ch)
	c.mu.Unlock()
	return ch
}

// Navigate loads the URL and waits for the page load event, bounded by the
// configured navigation timeout.
func (c *CDP) Navigate(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.NavTimeout)
	defer cancel()

	loaded := c.waitEvent("Page.loadEventFired")

	var nav struct {
		ErrorText string `json:"errorText"`
	}
	if err := c.call(ctx, "Page.navigate", map[string]string{"url": url}, &nav); err != nil {
		return err
	}
	if nav.ErrorText != "" {
		return fmt.Errorf("navigate %s: %s", url, nav.ErrorText)
	}

	select {
	case _, ok := <-loaded:
		if !ok {
			return fmt.Errorf("navigate %s: connection lost", url)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("navigate %s: %w", url, ctx.Err())
	}
}

// Snapshot runs the capture program in page context and decodes the result.
func (c *CDP) Snapshot(ctx context.Context) (*dom.Snapshot, error) {
	params := map[string]any{
		"expression":    dom.CaptureScript,
		"returnByValue": true,
	}
	var eval struct {
		Result struct {
			Value json.RawMessage `json:"value"`
		} `json:"result"`
		ExceptionDetails *struct {
			Text string `json:"text"`
		} `json:"exceptionDetails"`
	}
	if err := c.call(ctx, "Runtime.evaluate", params, &eval); err != nil {
		return nil, err
	}
	if eval.ExceptionDetails != nil {
		return nil, fmt.Errorf("capture script threw: %s", eval.ExceptionDetails.Text)
	}

	// The capture program returns a JSON string.
	var payload string
	if err := json.Unmarshal(eval.Result.Value, &payload); err != nil {
		return nil, fmt.Errorf("decode capture payload: %w", err)
	}
	return dom.Decode([]byte(payload))
}

// Close tears down the target and the websocket.
func (c *CDP) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = c.call(ctx, "Target.closeTarget", map[string]string{"targetId": c.targetID}, nil)

	err := c.conn.Close()
	<-c.done
	return err
}
