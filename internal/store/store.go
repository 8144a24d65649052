/*
Copyright (c) The wisun-br-linux Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package store persists border router state across restarts: PAN
// identity, per-node neighbor and key material, the network key set,
// and RPL DODAG state. Keyspace mirrors the storage file names used by
// the Wi-SUN Border Router application (br-info, neighbor-<eui64>,
// keys-<eui64>, network-keys, rpl-<dodag_id>), adapted from a flat
// storage directory onto bbolt buckets.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketBRInfo      = []byte("br-info")
	bucketNeighbors   = []byte("neighbor")
	bucketKeys        = []byte("keys")
	bucketNetworkKeys = []byte("network-keys")
	bucketRPL         = []byte("rpl")
)

var buckets = [][]byte{bucketBRInfo, bucketNeighbors, bucketKeys, bucketNetworkKeys, bucketRPL}

// brInfoKey is the single key holding the br-info record, mirroring
// the original implementation's single-file "br-info" keyspace entry.
var brInfoKey = []byte("br-info")

// networkKeysKey is the single key holding the network key set.
var networkKeysKey = []byte("network-keys")

// Store is a bbolt-backed persistence facade for border router state.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if absent) the bbolt database at path and
// ensures every bucket exists.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range buckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("store: create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// BRInfo is the border router's own PAN identity, persisted so a
// restart rejoins the same PAN instead of forming a new one.
type BRInfo struct {
	BSI         uint16
	PANID       uint16
	PANVersion  uint16
	LFNVersion  uint16
	NetworkName string
}

// PutBRInfo stores the border router's PAN identity.
func (s *Store) PutBRInfo(info BRInfo) error {
	return s.putJSON(bucketBRInfo, brInfoKey, info)
}

// GetBRInfo loads the border router's PAN identity, if present.
func (s *Store) GetBRInfo() (BRInfo, bool, error) {
	var info BRInfo
	ok, err := s.getJSON(bucketBRInfo, brInfoKey, &info)
	return info, ok, err
}

// NeighborRecord is the persisted subset of a neighbor's state needed
// to skip re-discovery after a restart.
type NeighborRecord struct {
	EUI64       [8]byte
	ShortAddr   uint16
	IsParent    bool
	LastSeenSec int64
}

// PutNeighbor stores a neighbor record keyed by its EUI-64.
func (s *Store) PutNeighbor(eui64 [8]byte, rec NeighborRecord) error {
	return s.putJSON(bucketNeighbors, eui64Key(eui64), rec)
}

// GetNeighbor loads a neighbor record, if present.
func (s *Store) GetNeighbor(eui64 [8]byte) (NeighborRecord, bool, error) {
	var rec NeighborRecord
	ok, err := s.getJSON(bucketNeighbors, eui64Key(eui64), &rec)
	return rec, ok, err
}

// DeleteNeighbor removes a neighbor record.
func (s *Store) DeleteNeighbor(eui64 [8]byte) error {
	return s.delete(bucketNeighbors, eui64Key(eui64))
}

// ForEachNeighbor iterates every persisted neighbor record in key
// order, stopping early if fn returns an error.
func (s *Store) ForEachNeighbor(fn func(eui64 [8]byte, rec NeighborRecord) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketNeighbors).ForEach(func(k, v []byte) error {
			var rec NeighborRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("store: decode neighbor %x: %w", k, err)
			}
			return fn(rec.EUI64, rec)
		})
	})
}

// KeyRecord is a supplicant's persisted authentication key material
// (its four GTK hashes), keyed by EUI-64.
type KeyRecord struct {
	EUI64     [8]byte
	GTKHashes [4][8]byte
}

// PutKeys stores a supplicant's key record.
func (s *Store) PutKeys(eui64 [8]byte, rec KeyRecord) error {
	return s.putJSON(bucketKeys, eui64Key(eui64), rec)
}

// GetKeys loads a supplicant's key record, if present.
func (s *Store) GetKeys(eui64 [8]byte) (KeyRecord, bool, error) {
	var rec KeyRecord
	ok, err := s.getJSON(bucketKeys, eui64Key(eui64), &rec)
	return rec, ok, err
}

// DeleteKeys removes a supplicant's key record.
func (s *Store) DeleteKeys(eui64 [8]byte) error {
	return s.delete(bucketKeys, eui64Key(eui64))
}

// NetworkKeysRecord is the border router's own GTK/LGTK slot set.
type NetworkKeysRecord struct {
	GTKs  [4][16]byte
	LGTKs [3][16]byte
}

// PutNetworkKeys stores the network key set.
func (s *Store) PutNetworkKeys(rec NetworkKeysRecord) error {
	return s.putJSON(bucketNetworkKeys, networkKeysKey, rec)
}

// GetNetworkKeys loads the network key set, if present.
func (s *Store) GetNetworkKeys() (NetworkKeysRecord, bool, error) {
	var rec NetworkKeysRecord
	ok, err := s.getJSON(bucketNetworkKeys, networkKeysKey, &rec)
	return rec, ok, err
}

// RPLRecord is the persisted non-storing DODAG state for one DODAG ID.
type RPLRecord struct {
	DODAGID string
	DTSN    uint8
	Targets []RPLTargetRecord
}

// RPLTargetRecord is one persisted RPL target prefix and its transits.
type RPLTargetRecord struct {
	Prefix   string
	Transits []RPLTransitRecord
}

// RPLTransitRecord is one persisted RPL DAO parent/path-sequence pair.
type RPLTransitRecord struct {
	Parent       string
	PathSequence uint8
}

// PutRPL stores a DODAG's persisted state keyed by DODAG ID.
func (s *Store) PutRPL(dodagID string, rec RPLRecord) error {
	return s.putJSON(bucketRPL, []byte(dodagID), rec)
}

// GetRPL loads a DODAG's persisted state, if present.
func (s *Store) GetRPL(dodagID string) (RPLRecord, bool, error) {
	var rec RPLRecord
	ok, err := s.getJSON(bucketRPL, []byte(dodagID), &rec)
	return rec, ok, err
}

// DeleteRPL removes a DODAG's persisted state.
func (s *Store) DeleteRPL(dodagID string) error {
	return s.delete(bucketRPL, []byte(dodagID))
}

// Batch runs fn inside a single bbolt write transaction so multiple
// Store writes (e.g. a neighbor record and its key record) commit or
// fail together.
func (s *Store) Batch(fn func(*Tx) error) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return fn(&Tx{tx: tx})
	})
}

// Tx is a Store handle bound to one in-flight write transaction,
// exposing the same typed operations as Store for use inside Batch.
type Tx struct {
	tx *bbolt.Tx
}

func (t *Tx) PutBRInfo(info BRInfo) error { return putJSON(t.tx, bucketBRInfo, brInfoKey, info) }

func (t *Tx) PutNeighbor(eui64 [8]byte, rec NeighborRecord) error {
	return putJSON(t.tx, bucketNeighbors, eui64Key(eui64), rec)
}

func (t *Tx) PutKeys(eui64 [8]byte, rec KeyRecord) error {
	return putJSON(t.tx, bucketKeys, eui64Key(eui64), rec)
}

func (t *Tx) PutRPL(dodagID string, rec RPLRecord) error {
	return putJSON(t.tx, bucketRPL, []byte(dodagID), rec)
}

func eui64Key(eui64 [8]byte) []byte {
	return []byte(fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x:%02x:%02x",
		eui64[0], eui64[1], eui64[2], eui64[3], eui64[4], eui64[5], eui64[6], eui64[7]))
}

func (s *Store) putJSON(bucket, key []byte, v any) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return putJSON(tx, bucket, key, v)
	})
}

func putJSON(tx *bbolt.Tx, bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s/%s: %w", bucket, key, err)
	}
	if err := tx.Bucket(bucket).Put(key, data); err != nil {
		return fmt.Errorf("store: put %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *Store) getJSON(bucket, key []byte, v any) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucket).Get(key)
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, v)
	})
	if err != nil {
		return false, fmt.Errorf("store: get %s/%s: %w", bucket, key, err)
	}
	return found, nil
}

func (s *Store) delete(bucket, key []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Delete(key)
	})
}
