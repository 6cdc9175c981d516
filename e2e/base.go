package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

type BaseSuite struct {
	suite.Suite
	Config Config
	client *http.Client
}

// SetupSuite loads the environment configuration before running tests.
// Suites skip themselves when no backend address is configured, so the
// e2e package stays inert under plain `go test ./...`.
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.ServerAddr == "" {
		s.T().Skip("SERVER_ADDR not set, skipping e2e suite")
	}
	s.client = &http.Client{Timeout: 30 * time.Second}
}

// Step prints a colorized header so individual scenario phases stand out
// in the test logs.
func (s *BaseSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// DoJSON sends a JSON request with an optional bearer token and decodes
// the JSON response into out (when out is non-nil). It returns the HTTP
// status code for assertions.
func (s *BaseSuite) DoJSON(method, path, token string, body any, out any) int {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, s.Config.ServerAddr+path, reader)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	logBuilder := strings.Builder{}
	fmt.Fprintf(&logBuilder, "HTTP %s %s [%d] in %v", method, path, resp.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		fmt.Fprintln(&logBuilder, "\nRESPONSE:")
		fmt.Fprintln(&logBuilder, string(raw))
	}
	s.T().Log(logBuilder.String())

	if out != nil && len(raw) > 0 {
		s.Require().NoError(json.Unmarshal(raw, out))
	}
	return resp.StatusCode
}

// DialWS opens a websocket session against the backend.
func (s *BaseSuite) DialWS(name string) *websocket.Conn {
	s.Step(name)
	conn, _, err := websocket.DefaultDialer.Dial(s.Config.WSAddr+"/ws", nil)
	s.Require().NoError(err, "Failed to open websocket at "+s.Config.WSAddr)
	return conn
}

// ReadEvent reads the next event envelope from a websocket with a
// deadline, failing the test on timeout.
func (s *BaseSuite) ReadEvent(conn *websocket.Conn, timeout time.Duration) (string, json.RawMessage) {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(timeout)))

	var envelope struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	s.Require().NoError(conn.ReadJSON(&envelope))
	return envelope.Event, envelope.Data
}

// SendEvent writes an event envelope to a websocket.
func (s *BaseSuite) SendEvent(conn *websocket.Conn, event string, data any) {
	payload, err := json.Marshal(data)
	s.Require().NoError(err)
	s.Require().NoError(conn.WriteJSON(map[string]any{
		"event": event,
		"data":  json.RawMessage(payload),
	}))
}
