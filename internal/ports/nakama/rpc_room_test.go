package nakama

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/heroiclabs/nakama-common/api"
)

type fakeRoomNakama struct {
	fakeNakama
	listed []*api.Match
	query  string
}

func (f *fakeRoomNakama) MatchList(ctx context.Context, limit int, authoritative bool, label string, minSize, maxSize *int, query string) ([]*api.Match, error) {
	f.query = query
	return f.listed, nil
}

func TestParseRoomRequestDefaults(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		wantVariant string
		wantMode    string
		wantErr     bool
	}{
		{
			name:        "Empty",
			payload:     "",
			wantVariant: "classic",
			wantMode:    "multiplayer",
		},
		{
			name:        "SoloVariant",
			payload:     `{"variant":"holiday","mode":"solo"}`,
			wantVariant: "holiday",
			wantMode:    "solo",
		},
		{
			name:        "BlankFields",
			payload:     `{}`,
			wantVariant: "classic",
			wantMode:    "multiplayer",
		},
		{
			name:    "UnknownMode",
			payload: `{"mode":"battle-royale"}`,
			wantErr: true,
		},
		{
			name:    "Garbage",
			payload: `{not json`,
			wantErr: true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			req, err := parseRoomRequest(test.payload)
			if test.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			if req.Variant != test.wantVariant || req.Mode != test.wantMode {
				t.Fatalf("parsed = %+v", req)
			}
		})
	}
}

func TestRpcCreateRoomAlwaysCreates(t *testing.T) {
	nk := &fakeRoomNakama{}
	out, err := rpcCreateRoom(context.Background(), noopLogger{}, nil, nk, `{"mode":"solo"}`)
	if err != nil {
		t.Fatalf("rpc error: %v", err)
	}

	var resp RoomResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.MatchID != "match-new" || !resp.IsNew {
		t.Fatalf("response = %+v", resp)
	}
	if len(nk.createdParams) != 1 || nk.createdParams[0]["mode"] != "solo" {
		t.Fatalf("create params = %+v", nk.createdParams)
	}
}

func TestRpcFindRoomJoinsListedMatch(t *testing.T) {
	nk := &fakeRoomNakama{
		listed: []*api.Match{{MatchId: "match-open"}},
	}

	out, err := rpcFindRoom(context.Background(), noopLogger{}, nil, nk, "")
	if err != nil {
		t.Fatalf("rpc error: %v", err)
	}

	var resp RoomResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.MatchID != "match-open" || resp.IsNew {
		t.Fatalf("response = %+v", resp)
	}
	if len(nk.createdParams) != 0 {
		t.Fatalf("created a match despite an open listing")
	}
}

func TestRpcFindRoomCreatesWhenNoneListed(t *testing.T) {
	nk := &fakeRoomNakama{}

	out, err := rpcFindRoom(context.Background(), noopLogger{}, nil, nk, "")
	if err != nil {
		t.Fatalf("rpc error: %v", err)
	}

	var resp RoomResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.MatchID != "match-new" || !resp.IsNew {
		t.Fatalf("response = %+v", resp)
	}
}

func TestRpcFindRoomSoloSkipsListing(t *testing.T) {
	nk := &fakeRoomNakama{
		listed: []*api.Match{{MatchId: "match-open"}},
	}

	out, err := rpcFindRoom(context.Background(), noopLogger{}, nil, nk, `{"mode":"solo"}`)
	if err != nil {
		t.Fatalf("rpc error: %v", err)
	}

	var resp RoomResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.IsNew {
		t.Fatalf("solo request joined a shared room: %+v", resp)
	}
	if nk.query != "" {
		t.Fatalf("solo request listed matches with query %q", nk.query)
	}
}

func TestRpcFindRoomRejectsBadPayload(t *testing.T) {
	nk := &fakeRoomNakama{}
	if _, err := rpcFindRoom(context.Background(), noopLogger{}, nil, nk, `{broken`); err == nil {
		t.Fatal("expected error for invalid payload")
	}
}
