package journal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"time"

	"auction-ledger/internal/auctionerrors"
	"auction-ledger/internal/models"
	"auction-ledger/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var (
	metaKey     = []byte("meta")
	eventPrefix = []byte("ev/")
)

// storedMeta is the RLP form of models.Meta
type storedMeta struct {
	AuctionID  string
	Auctioneer common.Address
	EndTime    uint64 // unix nanoseconds
	Reserve    *big.Int
}

// Journal is the durable, ordered record of committed auction events,
// stored in leveldb and keyed by sequence number.
type Journal struct {
	db    *leveldb.DB
	write *opt.WriteOptions
}

// Open opens or creates a journal in dir. With sync set every append is
// flushed to disk before it returns.
func Open(dir string, sync bool) (*Journal, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", dir, err)
	}
	return &Journal{db: db, write: &opt.WriteOptions{Sync: sync}}, nil
}

// OpenMemory opens a journal that lives only in memory
func OpenMemory() (*Journal, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("journal: open memory: %w", err)
	}
	return &Journal{db: db, write: &opt.WriteOptions{}}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// EnsureMeta stores meta on first use. On later opens it returns the stored
// meta, failing if the auctioneer differs from the configured one.
func (j *Journal) EnsureMeta(meta models.Meta) (models.Meta, error) {
	raw, err := j.db.Get(metaKey, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		if err := j.saveMeta(meta); err != nil {
			return models.Meta{}, err
		}
		return meta, nil
	}
	if err != nil {
		return models.Meta{}, fmt.Errorf("journal: read meta: %w", err)
	}

	var stored storedMeta
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return models.Meta{}, fmt.Errorf("journal: decode meta: %w", err)
	}
	if stored.Auctioneer != meta.Auctioneer {
		return models.Meta{}, fmt.Errorf("journal: stored auctioneer %s, configured %s: %w",
			stored.Auctioneer.Hex(), meta.Auctioneer.Hex(), auctionerrors.ErrJournalMismatch)
	}
	return models.Meta{
		AuctionID:      stored.AuctionID,
		Auctioneer:     stored.Auctioneer,
		BiddingEndTime: time.Unix(0, int64(stored.EndTime)).UTC(),
		Reserve:        stored.Reserve,
	}, nil
}

func (j *Journal) saveMeta(meta models.Meta) error {
	reserve := meta.Reserve
	if reserve == nil {
		reserve = new(big.Int)
	}
	raw, err := rlp.EncodeToBytes(storedMeta{
		AuctionID:  meta.AuctionID,
		Auctioneer: meta.Auctioneer,
		EndTime:    uint64(meta.BiddingEndTime.UnixNano()),
		Reserve:    reserve,
	})
	if err != nil {
		return fmt.Errorf("journal: encode meta: %w", err)
	}
	if err := j.db.Put(metaKey, raw, j.write); err != nil {
		return fmt.Errorf("journal: write meta: %w", err)
	}
	return nil
}

// Append stores ev under its sequence number
func (j *Journal) Append(ev models.Event) error {
	raw, err := rlp.EncodeToBytes(ev)
	if err != nil {
		return fmt.Errorf("journal: encode event %d: %w", ev.Seq, err)
	}
	if err := j.db.Put(eventKey(ev.Seq), raw, j.write); err != nil {
		return fmt.Errorf("journal: write event %d: %w", ev.Seq, err)
	}
	return nil
}

// Emit appends ev, logging instead of failing: the operation that produced it
// has already been committed and paid out.
func (j *Journal) Emit(ev models.Event) {
	if err := j.Append(ev); err != nil {
		utils.Error("journal: failed to append event", map[string]any{
			"seq":   ev.Seq,
			"kind":  ev.Kind.String(),
			"error": err.Error(),
		})
	}
}

// Events returns every stored event with Seq >= from, in Seq order
func (j *Journal) Events(from uint64) ([]models.Event, error) {
	rng := util.BytesPrefix(eventPrefix)
	rng.Start = eventKey(from)

	iter := j.db.NewIterator(rng, nil)
	defer iter.Release()

	var events []models.Event
	for iter.Next() {
		var ev models.Event
		if err := rlp.DecodeBytes(iter.Value(), &ev); err != nil {
			return nil, fmt.Errorf("journal: decode event at %x: %w", iter.Key(), err)
		}
		events = append(events, ev)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("journal: iterate events: %w", err)
	}
	return events, nil
}

func eventKey(seq uint64) []byte {
	key := make([]byte, len(eventPrefix)+8)
	copy(key, eventPrefix)
	binary.BigEndian.PutUint64(key[len(eventPrefix):], seq)
	return key
}
