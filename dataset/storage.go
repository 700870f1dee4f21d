package dataset

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// SaveCompressed writes the dataset as a zstd-compressed binary snapshot.
func (d *Dataset) SaveCompressed(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %v", err)
	}
	defer file.Close()

	bufWriter := bufio.NewWriterSize(file, 1024*1024)
	enc, err := zstd.NewWriter(bufWriter,
		zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %v", err)
	}
	defer enc.Close()

	// Header: point count, id, creation time
	binary.Write(enc, binary.LittleEndian, uint32(len(d.Points)))
	writeString(enc, d.ID)
	binary.Write(enc, binary.LittleEndian, d.Created.Unix())

	for _, p := range d.Points {
		binary.Write(enc, binary.LittleEndian, p.ID)
		binary.Write(enc, binary.LittleEndian, p.X)
		binary.Write(enc, binary.LittleEndian, p.Y)

		binary.Write(enc, binary.LittleEndian, uint32(len(p.Metrics)))
		for k, v := range p.Metrics {
			writeString(enc, k)
			binary.Write(enc, binary.LittleEndian, v)
		}

		binary.Write(enc, binary.LittleEndian, uint32(len(p.Metadata)))
		for k, v := range p.Metadata {
			writeString(enc, k)

			valueBytes, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("failed to marshal metadata value: %v", err)
			}
			binary.Write(enc, binary.LittleEndian, uint32(len(valueBytes)))
			enc.Write(valueBytes)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to close encoder: %v", err)
	}
	if err := bufWriter.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %v", err)
	}

	return nil
}

// LoadCompressed reads a dataset back from a zstd snapshot.
func LoadCompressed(filename string) (*Dataset, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %v", err)
	}
	defer file.Close()

	dec, err := zstd.NewReader(bufio.NewReaderSize(file, 1024*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %v", err)
	}
	defer dec.Close()

	var numPoints uint32
	binary.Read(dec, binary.LittleEndian, &numPoints)

	id, err := readString(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset id: %v", err)
	}
	var createdUnix int64
	binary.Read(dec, binary.LittleEndian, &createdUnix)

	points := make([]Point, 0, numPoints)
	for i := uint32(0); i < numPoints; i++ {
		var p Point
		binary.Read(dec, binary.LittleEndian, &p.ID)
		binary.Read(dec, binary.LittleEndian, &p.X)
		binary.Read(dec, binary.LittleEndian, &p.Y)

		var numMetrics uint32
		binary.Read(dec, binary.LittleEndian, &numMetrics)
		p.Metrics = make(map[string]float64, numMetrics)
		for j := uint32(0); j < numMetrics; j++ {
			k, err := readString(dec)
			if err != nil {
				return nil, fmt.Errorf("failed to read metric key: %v", err)
			}
			var v float64
			binary.Read(dec, binary.LittleEndian, &v)
			p.Metrics[k] = v
		}

		var numMetadata uint32
		binary.Read(dec, binary.LittleEndian, &numMetadata)
		if numMetadata > 0 {
			p.Metadata = make(map[string]interface{}, numMetadata)
			for j := uint32(0); j < numMetadata; j++ {
				k, err := readString(dec)
				if err != nil {
					return nil, fmt.Errorf("failed to read metadata key: %v", err)
				}

				var valueSize uint32
				binary.Read(dec, binary.LittleEndian, &valueSize)
				valueBytes := make([]byte, valueSize)
				if _, err := io.ReadFull(dec, valueBytes); err != nil {
					return nil, fmt.Errorf("failed to read metadata value: %v", err)
				}

				var value interface{}
				if err := json.Unmarshal(valueBytes, &value); err != nil {
					return nil, fmt.Errorf("failed to unmarshal metadata value: %v", err)
				}
				p.Metadata[k] = value
			}
		}

		points = append(points, p)
	}

	return &Dataset{
		ID:      id,
		Created: time.Unix(createdUnix, 0),
		Points:  points,
	}, nil
}

func writeString(w io.Writer, s string) {
	binary.Write(w, binary.LittleEndian, uint32(len(s)))
	w.Write([]byte(s))
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// SnapshotInfo describes one saved dataset snapshot on disk.
type SnapshotInfo struct {
	ID        string    `json:"id"`
	NumPoints int       `json:"numPoints"`
	Timestamp time.Time `json:"timestamp"`
	FileSize  int64     `json:"fileSize"`
}

// SnapshotFilename builds a snapshot path of the form
// dataset-{numPoints}p-{timestamp}-{id}.zst inside dir.
func SnapshotFilename(dir string, numPoints int) string {
	timestamp := time.Now().Format("20060102-150405")
	id := uuid.New().String()[:8] // Use first 8 chars of UUID for brevity
	return filepath.Join(dir, fmt.Sprintf("dataset-%dp-%s-%s.zst", numPoints, timestamp, id))
}

// ListSnapshots scans dir for dataset snapshots, newest first.
func ListSnapshots(dir string) ([]SnapshotInfo, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	snapshots := make([]SnapshotInfo, 0)
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".zst" {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}

		// Format: dataset-{numPoints}p-{timestamp}-{id}.zst
		name := strings.TrimSuffix(file.Name(), ".zst")
		parts := strings.Split(name, "-")
		if len(parts) != 5 {
			continue
		}
		numPoints, err := strconv.Atoi(strings.TrimSuffix(parts[1], "p"))
		if err != nil {
			continue
		}
		timestamp, err := time.Parse("20060102-150405", parts[2]+"-"+parts[3])
		if err != nil {
			continue
		}

		snapshots = append(snapshots, SnapshotInfo{
			ID:        parts[4],
			NumPoints: numPoints,
			Timestamp: timestamp,
			FileSize:  info.Size(),
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp.After(snapshots[j].Timestamp)
	})
	return snapshots, nil
}

// FindSnapshot locates the snapshot file carrying the given short id.
func FindSnapshot(dir, id string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read snapshot directory: %v", err)
	}

	for _, file := range files {
		if strings.Contains(file.Name(), id) && strings.HasSuffix(file.Name(), ".zst") {
			return filepath.Join(dir, file.Name()), nil
		}
	}
	return "", fmt.Errorf("no snapshot found with id %s", id)
}
