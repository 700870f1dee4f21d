package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hehuanshu96/geoplot/dataset"
	"github.com/hehuanshu96/geoplot/quad"
)

// Registry keeps recently used datasets in memory, backed by compressed
// snapshots on disk. At most maxLoaded datasets stay resident; the least
// recently used one is evicted when the cap is hit, and idle datasets are
// dropped by a background sweep.
type Registry struct {
	dir          string
	datasets     map[string]*dataset.Dataset
	lock         sync.RWMutex
	lastAccessed map[string]time.Time
	maxLoaded    int
}

func NewRegistry(dir string, maxLoaded int) *Registry {
	r := &Registry{
		dir:          dir,
		datasets:     make(map[string]*dataset.Dataset),
		lastAccessed: make(map[string]time.Time),
		maxLoaded:    maxLoaded,
	}

	// Start cleanup goroutine
	go r.cleanupIdleDatasets()

	return r
}

// Create generates numPoints random observations over the whole globe, writes
// them to a new snapshot, and keeps the dataset loaded.
func (r *Registry) Create(numPoints int) (dataset.SnapshotInfo, error) {
	fmt.Printf("Creating new dataset with %d points\n", numPoints)

	bounds := quad.Bounds{
		MinX: -180.0,
		MinY: -90.0,
		MaxX: 180.0,
		MaxY: 90.0,
	}
	points := dataset.GenerateTestPoints(numPoints, bounds)

	savePath := dataset.SnapshotFilename(r.dir, numPoints)
	id, err := snapshotID(savePath)
	if err != nil {
		return dataset.SnapshotInfo{}, err
	}

	ds := dataset.New(id, points)
	fmt.Printf("Saving new dataset to %s...\n", savePath)
	if err := ds.SaveCompressed(savePath); err != nil {
		return dataset.SnapshotInfo{}, fmt.Errorf("failed to save dataset: %v", err)
	}

	r.lock.Lock()
	r.evictForCapacity()
	r.datasets[id] = ds
	r.lastAccessed[id] = time.Now()
	r.lock.Unlock()

	fileInfo, err := os.Stat(savePath)
	if err != nil {
		return dataset.SnapshotInfo{}, fmt.Errorf("failed to get file info: %v", err)
	}

	return dataset.SnapshotInfo{
		ID:        id,
		NumPoints: numPoints,
		Timestamp: ds.Created,
		FileSize:  fileInfo.Size(),
	}, nil
}

// Add snapshots an externally built dataset (GeoJSON upload, shapefile import)
// and keeps it loaded under the snapshot's short id.
func (r *Registry) Add(ds *dataset.Dataset) (dataset.SnapshotInfo, error) {
	savePath := dataset.SnapshotFilename(r.dir, len(ds.Points))
	id, err := snapshotID(savePath)
	if err != nil {
		return dataset.SnapshotInfo{}, err
	}
	ds.ID = id

	if err := ds.SaveCompressed(savePath); err != nil {
		return dataset.SnapshotInfo{}, fmt.Errorf("failed to save dataset: %v", err)
	}

	r.lock.Lock()
	r.evictForCapacity()
	r.datasets[id] = ds
	r.lastAccessed[id] = time.Now()
	r.lock.Unlock()

	fileInfo, err := os.Stat(savePath)
	if err != nil {
		return dataset.SnapshotInfo{}, fmt.Errorf("failed to get file info: %v", err)
	}

	return dataset.SnapshotInfo{
		ID:        id,
		NumPoints: len(ds.Points),
		Timestamp: ds.Created,
		FileSize:  fileInfo.Size(),
	}, nil
}

// List reports the snapshots on disk, newest first.
func (r *Registry) List() ([]dataset.SnapshotInfo, error) {
	return dataset.ListSnapshots(r.dir)
}

// Info returns the snapshot entry for one id.
func (r *Registry) Info(id string) (dataset.SnapshotInfo, error) {
	snapshots, err := dataset.ListSnapshots(r.dir)
	if err != nil {
		return dataset.SnapshotInfo{}, err
	}
	for _, s := range snapshots {
		if s.ID == id {
			return s, nil
		}
	}
	return dataset.SnapshotInfo{}, fmt.Errorf("no snapshot found with id %s", id)
}

// Get returns the dataset for id, loading its snapshot if it is not resident.
func (r *Registry) Get(id string) (*dataset.Dataset, error) {
	if err := r.loadIfNeeded(id); err != nil {
		return nil, err
	}

	r.lock.RLock()
	ds := r.datasets[id]
	r.lock.RUnlock()
	return ds, nil
}

func (r *Registry) loadIfNeeded(id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	// Update access time if the dataset is already loaded
	if _, exists := r.datasets[id]; exists {
		r.lastAccessed[id] = time.Now()
		return nil
	}

	r.evictForCapacity()

	snapshotFile, err := dataset.FindSnapshot(r.dir, id)
	if err != nil {
		return fmt.Errorf("failed to find snapshot: %v", err)
	}

	ds, err := dataset.LoadCompressed(snapshotFile)
	if err != nil {
		return fmt.Errorf("failed to load dataset %s: %v", id, err)
	}

	r.datasets[id] = ds
	r.lastAccessed[id] = time.Now()
	return nil
}

// evictForCapacity drops the least recently used dataset when the registry is
// full. Callers must hold the write lock.
func (r *Registry) evictForCapacity() {
	if len(r.datasets) < r.maxLoaded {
		return
	}

	var oldestID string
	var oldestTime time.Time
	first := true
	for id, accessTime := range r.lastAccessed {
		if first || accessTime.Before(oldestTime) {
			oldestID = id
			oldestTime = accessTime
			first = false
		}
	}

	if oldestID != "" {
		delete(r.datasets, oldestID)
		delete(r.lastAccessed, oldestID)
	}
}

func (r *Registry) cleanupIdleDatasets() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		r.evictIdle(30 * time.Minute)
	}
}

// evictIdle drops every dataset that has not been touched within maxIdle.
func (r *Registry) evictIdle(maxIdle time.Duration) {
	r.lock.Lock()
	defer r.lock.Unlock()

	now := time.Now()
	var toRemove []string
	for id, lastAccess := range r.lastAccessed {
		if now.Sub(lastAccess) > maxIdle {
			toRemove = append(toRemove, id)
		}
	}

	for _, id := range toRemove {
		delete(r.datasets, id)
		delete(r.lastAccessed, id)
	}
}

// NumLoaded reports how many datasets are resident in memory.
func (r *Registry) NumLoaded() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.datasets)
}

// snapshotID extracts the short id from a snapshot path of the form
// dataset-{numPoints}p-{timestamp}-{id}.zst.
func snapshotID(path string) (string, error) {
	parts := strings.Split(strings.TrimSuffix(filepath.Base(path), ".zst"), "-")
	if len(parts) != 5 {
		return "", fmt.Errorf("invalid snapshot filename format")
	}
	return parts[4], nil
}
