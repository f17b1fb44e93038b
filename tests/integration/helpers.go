package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/heroiclabs/nakama-common/rtapi"
	"github.com/heroiclabs/nakama-go/v2"
)

const (
	ServerKey = "defaultkey"
	Host      = "127.0.0.1"
	Port      = 7350
)

type TestClient struct {
	Client  *nakama.Client
	Session *nakama.Session
	Socket  *nakama.Socket
	UserID  string
	events  chan *rtapi.MatchData
}

func NewTestClient(t *testing.T) *TestClient {
	client := nakama.NewClient(ServerKey, Host, Port, false)

	deviceID := fmt.Sprintf("mafiaville_test_device_%d", time.Now().UnixNano())
	session, err := client.AuthenticateDevice(context.Background(), deviceID, true, "")
	if err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}

	socket := client.NewSocket()
	if err := socket.Connect(context.Background(), session, true); err != nil {
		t.Fatalf("Failed to connect socket: %v", err)
	}

	tc := &TestClient{
		Client:  client,
		Session: session,
		Socket:  socket,
		UserID:  session.UserId,
		events:  make(chan *rtapi.MatchData, 256),
	}
	socket.OnMatchData = func(data *rtapi.MatchData) {
		select {
		case tc.events <- data:
		default:
		}
	}
	return tc
}

func (tc *TestClient) Close() {
	if tc.Socket != nil {
		tc.Socket.Close()
	}
}

// QuickMatch calls the quick_match RPC and joins the returned match.
func (tc *TestClient) QuickMatch(t *testing.T) string {
	rpc, err := tc.Client.RpcFunc(context.Background(), tc.Session, "quick_match", "{}")
	if err != nil {
		t.Fatalf("RPC quick_match failed: %v", err)
	}
	var resp struct {
		MatchID string `json:"match_id"`
	}
	if err := json.Unmarshal([]byte(rpc.Payload), &resp); err != nil || resp.MatchID == "" {
		t.Fatalf("RPC quick_match returned %q: %v", rpc.Payload, err)
	}

	if _, err := tc.Socket.JoinMatch(context.Background(), nil, resp.MatchID, nil); err != nil {
		t.Fatalf("Failed to join match %s: %v", resp.MatchID, err)
	}
	return resp.MatchID
}

// WaitForMatchState waits for a message with the given opcode and decodes its JSON body.
func (tc *TestClient) WaitForMatchState(t *testing.T, opCode int64, timeout time.Duration) map[string]interface{} {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case data := <-tc.events:
			if data.OpCode != opCode {
				continue
			}
			body := map[string]interface{}{}
			if err := json.Unmarshal(data.Data, &body); err != nil {
				t.Fatalf("OpCode %d carried invalid JSON: %v", opCode, err)
			}
			return body
		case <-deadline:
			t.Fatalf("Timeout waiting for OpCode %d", opCode)
			return nil
		}
	}
}
