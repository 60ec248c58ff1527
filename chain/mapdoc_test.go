package chain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"thistoken/indexer/model"
	"thistoken/indexer/store"
)

func mapStoreServer(t *testing.T, docs map[string]interface{}) *store.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/thistoken/"):]
		doc, ok := docs[id]
		switch r.Method {
		case http.MethodGet:
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(doc)
		case http.MethodPut:
			var payload map[string]interface{}
			json.NewDecoder(r.Body).Decode(&payload)
			docs[id] = payload
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "rev": "1-x"})
		}
	}))
	t.Cleanup(srv.Close)
	return store.NewClient(srv.URL, "thistoken")
}

func TestDownloadMap(t *testing.T) {
	st := mapStoreServer(t, map[string]interface{}{
		"simple8": model.MapDocument{
			ID: "simple8", Type: model.DocTypeMap, Name: "simple8",
			NetworkID: "1337", Address: "0xabc", BlockNumber: 42,
		},
	})
	doc, err := DownloadMap(context.Background(), st, "simple8", "1337")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if doc.BlockNumber != 42 || doc.Address != "0xabc" {
		t.Fatalf("doc %+v", doc)
	}
}

func TestDownloadMapMissing(t *testing.T) {
	st := mapStoreServer(t, map[string]interface{}{})
	_, err := DownloadMap(context.Background(), st, "simple8", "1337")
	if !errors.Is(err, ErrMapNotFound) {
		t.Fatalf("err = %v, want ErrMapNotFound", err)
	}
}

func TestDownloadMapWrongNetwork(t *testing.T) {
	st := mapStoreServer(t, map[string]interface{}{
		"simple8": model.MapDocument{ID: "simple8", Name: "simple8", NetworkID: "1"},
	})
	_, err := DownloadMap(context.Background(), st, "simple8", "1337")
	if !errors.Is(err, ErrNetworkMismatch) {
		t.Fatalf("err = %v, want ErrNetworkMismatch", err)
	}
}

func TestSaveMapSetsTypeAndID(t *testing.T) {
	docs := map[string]interface{}{}
	st := mapStoreServer(t, docs)
	doc := &model.MapDocument{Name: "simple8", NetworkID: "1337", BlockNumber: 7}
	rev, err := SaveMap(context.Background(), st, doc)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if rev == "" || doc.Rev != rev {
		t.Fatalf("rev %q doc.Rev %q", rev, doc.Rev)
	}
	if doc.ID != "simple8" || doc.Type != model.DocTypeMap {
		t.Fatalf("doc %+v", doc)
	}
	saved := docs["simple8"].(map[string]interface{})
	if saved["type"] != "map" || saved["blockNumber"] != float64(7) {
		t.Fatalf("stored %v", saved)
	}
}
