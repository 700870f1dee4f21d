package main

import (
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/hehuanshu96/geoplot/dataset"
	"github.com/hehuanshu96/geoplot/plot"
	"github.com/hehuanshu96/geoplot/quad"
	"github.com/hehuanshu96/geoplot/service"
)

const DATASET_SAVE_DIR = "data/datasets"

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

// aggregationQuery is everything the aggregation endpoints need from the
// request: a dataset column plus the partitioning thresholds.
type aggregationQuery struct {
	ds      *dataset.Dataset
	points  []quad.Point
	opts    plot.Options
	column  string
	hasView bool
	view    quad.Bounds
}

func parseAggregationQuery(c *gin.Context, registry *service.Registry) (*aggregationQuery, bool) {
	id := c.Query("dataset")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing dataset parameter"})
		return nil, false
	}

	ds, err := registry.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}

	column := c.DefaultQuery("column", "value")
	points, err := ds.Column(column)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	q := &aggregationQuery{ds: ds, points: points, column: column}

	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"nmin", &q.opts.NMin},
		{"nmax", &q.opts.NMax},
		{"nsig", &q.opts.NSig},
	} {
		if raw := c.Query(p.name); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s parameter", p.name)})
				return nil, false
			}
			*p.dst = v
		}
	}

	reducer, ok := plot.ReducerByName(c.Query("agg"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agg parameter"})
		return nil, false
	}
	q.opts.Reducer = reducer

	// Optional viewport; all four edges must come together.
	if c.Query("west") != "" || c.Query("east") != "" {
		edges := [4]float64{}
		for i, name := range []string{"west", "south", "east", "north"} {
			v, err := strconv.ParseFloat(c.Query(name), 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s parameter", name)})
				return nil, false
			}
			edges[i] = v
		}
		q.hasView = true
		q.view = quad.Bounds{MinX: edges[0], MinY: edges[1], MaxX: edges[2], MaxY: edges[3]}
	}

	return q, true
}

func (q *aggregationQuery) run() ([]plot.Patch, error) {
	patches, err := plot.Aggregate(q.points, q.opts)
	if err != nil {
		return nil, err
	}
	if q.hasView {
		patches = plot.NewPatchIndex(patches).Query(q.view)
	}
	return patches, nil
}

func aggregationStatus(err error) int {
	var cerr *quad.ConfigError
	if errors.As(err, &cerr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func main() {
	var (
		port      = flag.Int("port", 8000, "HTTP listen port")
		dataDir   = flag.String("data-dir", DATASET_SAVE_DIR, "Snapshot directory")
		maxLoaded = flag.Int("max-loaded", 5, "Maximum datasets resident in memory")
	)
	flag.Parse()

	absPath, _ := filepath.Abs(*dataDir)
	fmt.Printf("Ensuring dataset directory exists: %s\n", absPath)
	if err := os.MkdirAll(*dataDir, 0755); err != nil {
		fmt.Printf("Error creating dataset directory: %v\n", err)
	}

	registry := service.NewRegistry(*dataDir, *maxLoaded)
	fmt.Println("Started with empty registry - waiting for a dataset to be loaded...")

	r := gin.Default()

	// Enable CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// List saved dataset snapshots
	r.GET("/api/datasets/list", func(c *gin.Context) {
		snapshots, err := registry.List()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, snapshots)
	})

	// Create a new random dataset
	r.POST("/api/datasets", func(c *gin.Context) {
		var req struct {
			NumPoints int `json:"numPoints"`
		}
		fmt.Printf("\n=== Received request to create new dataset ===\n")
		if err := c.BindJSON(&req); err != nil {
			fmt.Printf("ERROR: Failed to parse request: %v\n", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if req.NumPoints <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "numPoints must be positive"})
			return
		}

		info, err := registry.Create(req.NumPoints)
		if err != nil {
			fmt.Printf("ERROR: Failed to create dataset: %v\n", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		fmt.Printf("New dataset %s created (%s)\n", info.ID, formatFileSize(info.FileSize))
		c.JSON(http.StatusOK, gin.H{"message": "New dataset created", "datasetInfo": info})
	})

	// Ingest a GeoJSON feature collection as a dataset
	r.POST("/api/datasets/geojson", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
			return
		}

		ds, err := dataset.FromGeoJSON("upload", body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		info, err := registry.Add(ds)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		fmt.Printf("Ingested GeoJSON dataset %s with %d points\n", info.ID, info.NumPoints)
		c.JSON(http.StatusOK, gin.H{"message": "Dataset ingested", "datasetInfo": info})
	})

	// Pre-load a snapshot into memory
	r.POST("/api/datasets/load/:id", func(c *gin.Context) {
		id := c.Param("id")
		fmt.Printf("Received request to load dataset with ID: %s\n", id)

		if _, err := registry.Get(id); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		info, err := registry.Info(id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Dataset loaded successfully", "datasetInfo": info})
	})

	// Describe a loaded dataset's columns and extent
	r.GET("/api/datasets/:id/columns", func(c *gin.Context) {
		ds, err := registry.Get(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"columns":   ds.Columns(),
			"numPoints": len(ds.Points),
			"bounds":    ds.Bounds(),
		})
	})

	// Aggregate a column into patches, returned as GeoJSON polygons
	r.GET("/api/aggregate", func(c *gin.Context) {
		q, ok := parseAggregationQuery(c, registry)
		if !ok {
			return
		}

		patches, err := q.run()
		if err != nil {
			c.JSON(aggregationStatus(err), gin.H{"error": err.Error()})
			return
		}

		fmt.Printf("Aggregated %d points of column %q into %d patches\n",
			len(q.points), q.column, len(patches))
		c.JSON(http.StatusOK, plot.ToGeoJSON(patches))
	})

	// Render the aggregation as an SVG choropleth
	r.GET("/api/aggregate/svg", func(c *gin.Context) {
		q, ok := parseAggregationQuery(c, registry)
		if !ok {
			return
		}

		cm, ok := plot.ColormapByName(c.Query("cmap"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cmap parameter"})
			return
		}
		width, err := strconv.Atoi(c.DefaultQuery("width", "800"))
		if err != nil || width <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid width parameter"})
			return
		}

		patches, err := q.run()
		if err != nil {
			c.JSON(aggregationStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.Header("Content-Type", "image/svg+xml")
		plot.RenderSVG(c.Writer, patches, cm, width)
	})

	// Render the aggregation as a PNG with the raw points overlaid
	r.GET("/api/aggregate/png", func(c *gin.Context) {
		q, ok := parseAggregationQuery(c, registry)
		if !ok {
			return
		}

		cm, ok := plot.ColormapByName(c.Query("cmap"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cmap parameter"})
			return
		}
		size, err := strconv.Atoi(c.DefaultQuery("size", "1024"))
		if err != nil || size <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid size parameter"})
			return
		}

		patches, err := q.run()
		if err != nil {
			c.JSON(aggregationStatus(err), gin.H{"error": err.Error()})
			return
		}

		img := plot.RenderImage(patches, q.points, cm, size)
		c.Header("Content-Type", "image/png")
		if err := png.Encode(c.Writer, img); err != nil {
			fmt.Printf("ERROR: Failed to encode PNG: %v\n", err)
		}
	})

	// Summarize the aggregation for the metadata panel
	r.GET("/api/aggregate/summary", func(c *gin.Context) {
		q, ok := parseAggregationQuery(c, registry)
		if !ok {
			return
		}

		patches, err := q.run()
		if err != nil {
			c.JSON(aggregationStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, plot.Summarize(patches))
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Printf("Starting server on :%d...\n", *port)
		if err := r.Run(fmt.Sprintf(":%d", *port)); err != nil {
			fmt.Printf("Server error: %v\n", err)
		}
	}()

	<-quit
	fmt.Println("\nShutting down server...")
	fmt.Println("Server stopped")
}
