package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	blockcache "thistoken/indexer/cache"
	"thistoken/indexer/config"
	"thistoken/indexer/game"
	"thistoken/indexer/log"
	"thistoken/indexer/model"
	"thistoken/indexer/store"
)

// logReader is the slice of the chain client the session reads through.
// *ethclient.Client satisfies it.
type logReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// Session replays the contract's event log from the map's checkpoint
// into a materialized world, persisting a snapshot document per
// processed block and advancing the checkpoint as it goes. One session
// is the single writer of its world.
type Session struct {
	client    logReader
	st        *store.Client
	world     *game.World
	docMu     sync.RWMutex
	doc       *model.MapDocument
	networkID string
	contract  common.Address
	batch     uint64
	idleWait  time.Duration
}

// NewSession connects to the chain, downloads the map descriptor and
// prepares the world. Map-not-found and network mismatch are fatal
// here, before any event is touched.
func NewSession(ctx context.Context, cfg *config.Config) (*Session, error) {
	client, err := GetClient(cfg.Chain.RPC)
	if err != nil {
		return nil, err
	}
	nid, err := client.NetworkID(ctx)
	if err != nil {
		return nil, fmt.Errorf("query network id: %w", err)
	}

	st := store.NewClient(cfg.Couch.URL, cfg.Couch.Database)
	log.Infof("downloading map %s", cfg.Game.Map)
	doc, err := DownloadMap(ctx, st, cfg.Game.Map, nid.String())
	if err != nil {
		return nil, err
	}

	contract := doc.Address
	if cfg.Chain.Contract != "" {
		contract = cfg.Chain.Contract
	}

	world := game.NewWorld()
	world.SeedCities(doc.Cities)

	batch := cfg.Chain.BatchBlocks
	if batch == 0 {
		batch = 2000
	}
	idle := time.Duration(cfg.Chain.HeadIdleMillis) * time.Millisecond
	if idle == 0 {
		idle = time.Second
	}

	log.Infof("session ready: map=%s network=%s contract=%s from block %d",
		doc.Name, nid, contract, doc.BlockNumber)
	return &Session{
		client:    client,
		st:        st,
		world:     world,
		doc:       doc,
		networkID: nid.String(),
		contract:  common.HexToAddress(contract),
		batch:     batch,
		idleWait:  idle,
	}, nil
}

// World exposes the materialized view for the read API. Readers must
// only take copies via Snapshot.
func (s *Session) World() *game.World { return s.world }

// MapDoc returns a copy of the session's map descriptor; safe to call
// while the session advances its checkpoint.
func (s *Session) MapDoc() model.MapDocument {
	s.docMu.RLock()
	defer s.docMu.RUnlock()
	return *s.doc
}

// Run scans the log in block ranges until ctx is cancelled. Stopping is
// safe at any point: every persisted snapshot is self-consistent as of
// its block boundary and the next session resumes from the checkpoint.
func (s *Session) Run(ctx context.Context) error {
	from := s.doc.BlockNumber
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		head, err := s.client.BlockNumber(ctx)
		if err != nil {
			log.Errorf("query head: %v", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.idleWait):
			}
			continue
		}
		if from > head {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.idleWait):
			}
			continue
		}

		to := from + s.batch - 1
		if to > head {
			to = head
		}
		if err := s.processRange(ctx, from, to); err != nil {
			return err
		}
		from = to + 1
		s.checkpoint(ctx, from)
	}
}

// processRange folds every log of [from, to] and snapshots at each
// block boundary.
func (s *Session) processRange(ctx context.Context, from, to uint64) error {
	logs, err := s.client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{s.contract},
	})
	if err != nil {
		return fmt.Errorf("filter logs [%d,%d]: %w", from, to, err)
	}

	var (
		current uint64
		pending bool
	)
	for _, lg := range logs {
		if pending && lg.BlockNumber != current {
			if err := s.flush(ctx, current); err != nil {
				return err
			}
		}
		current = lg.BlockNumber
		pending = true
		s.fold(lg)
	}
	if pending {
		if err := s.flush(ctx, current); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) fold(lg types.Log) {
	rec := DecodeLog(lg)
	ev := game.Decode(rec)
	s.world.Apply(ev)
}

// flush persists the snapshot for a completed block. A lost revision
// race is logged and skipped; transport failures propagate.
func (s *Session) flush(ctx context.Context, blockNumber uint64) error {
	ts, err := s.blockTimestamp(ctx, blockNumber)
	if err != nil {
		return err
	}
	log.Infof("block %d time %d", blockNumber, ts)

	doc := s.world.Snapshot(s.networkID, s.doc.Name, blockNumber, ts)
	rev, err := s.st.Rev(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("fetch snapshot rev %s: %w", doc.ID, err)
	}
	newRev, err := s.st.Upsert(ctx, doc.ID, rev, doc)
	if store.IsConflict(err) {
		log.Warnf("snapshot %s lost a revision race, skipping: %v", doc.ID, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", doc.ID, err)
	}
	log.Infof("saved snapshot %s rev=%s", doc.ID, newRev)
	return nil
}

func (s *Session) blockTimestamp(ctx context.Context, blockNumber uint64) (uint64, error) {
	if ts, ok := blockcache.GetTimestamp(blockNumber); ok {
		return ts, nil
	}
	header, err := s.client.HeaderByNumber(ctx, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return 0, fmt.Errorf("fetch header %d: %w", blockNumber, err)
	}
	blockcache.SetTimestamp(blockNumber, header.Time)
	return header.Time, nil
}

// checkpoint advances the map document so the next session resumes at
// nextBlock. Failures are logged, not fatal: the worst case is
// refolding a range, which the fold tolerates.
func (s *Session) checkpoint(ctx context.Context, nextBlock uint64) {
	s.docMu.Lock()
	s.doc.BlockNumber = nextBlock
	snapshot := *s.doc
	s.docMu.Unlock()

	rev, err := SaveMap(ctx, s.st, &snapshot)
	if err != nil {
		if store.IsConflict(err) {
			log.Warnf("checkpoint %s lost a revision race: %v", snapshot.Name, err)
			return
		}
		log.Errorf("save checkpoint %s: %v", snapshot.Name, err)
		return
	}
	s.docMu.Lock()
	s.doc.ID = snapshot.ID
	s.doc.Type = snapshot.Type
	s.doc.Rev = rev
	s.docMu.Unlock()
}
