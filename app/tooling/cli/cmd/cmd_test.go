package cmd_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ardanlabs/ledger/app/tooling/cli/cmd"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Commands(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotBody   map[string]any
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotBody = nil
		json.NewDecoder(r.Body).Decode(&gotBody)

		if r.URL.Path == "/v1/block/99" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"block 99: not found"}`))
			return
		}
		w.Write([]byte(`{"note":"ok"}`))
	}))
	defer srv.Close()

	type table struct {
		name   string
		args   []string
		method string
		path   string
		body   map[string]any
	}

	tt := []table{
		{name: "chain", args: []string{"chain"}, method: http.MethodGet, path: "/v1/blockchain"},
		{name: "block", args: []string{"block", "2"}, method: http.MethodGet, path: "/v1/block/2"},
		{name: "send", args: []string{"send", "-v", "12.5", "-f", "alice", "-t", "bob"}, method: http.MethodPost, path: "/v1/transaction", body: map[string]any{"amount": 12.5, "from": "alice", "to": "bob"}},
		{name: "mine", args: []string{"mine"}, method: http.MethodGet, path: "/v1/mine"},
		{name: "signal", args: []string{"mine", "-b"}, method: http.MethodGet, path: "/v1/mining/signal"},
		{name: "register", args: []string{"register", "localhost:9180"}, method: http.MethodPost, path: "/v1/nodes/broadcast", body: map[string]any{"node": "localhost:9180"}},
		{name: "consensus", args: []string{"consensus"}, method: http.MethodGet, path: "/v1/consensus"},
	}

	t.Log("Given the need to drive a node from the command line.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen running the %s command.", testID, tst.name)
			{
				var out bytes.Buffer
				args := append(tst.args, "--url", srv.URL)
				if err := cmd.Run(args, &out); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould run the command: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould run the command.", success, testID)

				if gotMethod != tst.method || gotPath != tst.path {
					t.Fatalf("\t%s\tTest %d:\tShould call %s %s: got %s %s", failed, testID, tst.method, tst.path, gotMethod, gotPath)
				}
				t.Logf("\t%s\tTest %d:\tShould call the right endpoint.", success, testID)

				for k, v := range tst.body {
					if gotBody[k] != v {
						t.Fatalf("\t%s\tTest %d:\tShould send %s=%v: got %v", failed, testID, k, v, gotBody[k])
					}
				}
				t.Logf("\t%s\tTest %d:\tShould send the request body.", success, testID)

				if !strings.Contains(out.String(), `"note": "ok"`) {
					t.Fatalf("\t%s\tTest %d:\tShould print the response: %s", failed, testID, out.String())
				}
				t.Logf("\t%s\tTest %d:\tShould print the response.", success, testID)
			}
		}

		t.Logf("\tTest %d:\tWhen the node returns an error.", len(tt))
		{
			var out bytes.Buffer
			err := cmd.Run([]string{"block", "99", "--url", srv.URL}, &out)
			if err == nil || !strings.Contains(err.Error(), "status[404]") {
				t.Fatalf("\t%s\tTest %d:\tShould return the node error: %v", failed, len(tt), err)
			}
			t.Logf("\t%s\tTest %d:\tShould return the node error.", success, len(tt))
		}
	}
}
