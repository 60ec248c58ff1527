package chain

import (
	"context"
	"errors"
	"fmt"

	"thistoken/indexer/model"
	"thistoken/indexer/store"
)

// Fatal configuration errors: both abort a session before any event is
// processed.
var (
	ErrMapNotFound     = errors.New("map descriptor document was not found")
	ErrNetworkMismatch = errors.New("map descriptor document was saved in another network")
)

// DownloadMap fetches the map descriptor document and verifies it
// belongs to the connected network.
func DownloadMap(ctx context.Context, st *store.Client, name, networkID string) (*model.MapDocument, error) {
	doc := &model.MapDocument{}
	if err := st.Get(ctx, name, doc); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("map %s: %w", name, ErrMapNotFound)
		}
		return nil, fmt.Errorf("download map %s: %w", name, err)
	}
	if doc.NetworkID != networkID {
		return nil, fmt.Errorf("map %s is for network %s, connected to %s: %w",
			name, doc.NetworkID, networkID, ErrNetworkMismatch)
	}
	return doc, nil
}

// SaveMap upserts the map descriptor with fresh-revision handling and
// returns the new revision. Used both for map finalization after
// deployment and for checkpoint advances during replay.
func SaveMap(ctx context.Context, st *store.Client, doc *model.MapDocument) (string, error) {
	doc.Type = model.DocTypeMap
	if doc.ID == "" {
		doc.ID = doc.Name
	}
	rev, err := st.Rev(ctx, doc.ID)
	if err != nil {
		return "", fmt.Errorf("fetch map rev %s: %w", doc.ID, err)
	}
	newRev, err := st.Upsert(ctx, doc.ID, rev, doc)
	if err != nil {
		return "", err
	}
	doc.Rev = newRev
	return newRev, nil
}
