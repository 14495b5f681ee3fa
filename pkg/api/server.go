// Package api provides the REST API server for smfcheck
package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/james-see/smfcheck/pkg/export"
	"github.com/james-see/smfcheck/pkg/hexview"
	"github.com/james-see/smfcheck/pkg/validator"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title smfcheck API
// @version 1.0
// @description API for validating Standard MIDI Files
// @host localhost:8080
// @BasePath /api/v1

// MaxUploadSize bounds the size of one uploaded file
const MaxUploadSize = 32 << 20

// StartServer starts the API server on the specified port
func StartServer(port int) error {
	slog.Info("starting API server", "port", port)
	return NewRouter().Run(fmt.Sprintf(":%d", port))
}

// NewRouter builds the gin engine with every route registered
func NewRouter() *gin.Engine {
	r := gin.Default()
	r.MaxMultipartMemory = MaxUploadSize

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/checks", listChecks)
		v1.POST("/validate", handleValidate)
		v1.POST("/export/csv", handleExportCSV)
		v1.POST("/hex", handleHex)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "smfcheck",
	})
}

// listChecks godoc
// @Summary List diagnostic codes
// @Description Returns every check the validator performs
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]validator.Check
// @Router /api/v1/checks [get]
func listChecks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"checks": validator.Checks(),
	})
}

// handleValidate godoc
// @Summary Validate MIDI files
// @Description Upload one or more MIDI files and receive a report for each
// @Tags validate
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file(s) to validate"
// @Param pair_notes query bool false "Track dangling notes"
// @Param strict query bool false "Warn on unusual tempos"
// @Success 200 {array} validator.FileReport
// @Failure 400 {object} map[string]string
// @Router /api/v1/validate [post]
func handleValidate(c *gin.Context) {
	reports, ok := validateUploads(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, reports)
}

// handleExportCSV godoc
// @Summary Validate MIDI files and export CSV
// @Description Upload one or more MIDI files and receive the reports as CSV
// @Tags validate
// @Accept multipart/form-data
// @Produce text/csv
// @Param file formData file true "MIDI file(s) to validate"
// @Param pair_notes query bool false "Track dangling notes"
// @Param strict query bool false "Warn on unusual tempos"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/export/csv [post]
func handleExportCSV(c *gin.Context) {
	reports, ok := validateUploads(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, reports); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", "attachment; filename=smfcheck.csv")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// handleHex godoc
// @Summary Hex dump of a MIDI file
// @Description Upload a MIDI file and receive a hex dump with diagnostic bytes marked
// @Tags validate
// @Accept multipart/form-data
// @Produce plain
// @Param file formData file true "MIDI file"
// @Param offset query int false "Byte offset to centre the dump on (default: first diagnostic)"
// @Param rows query int false "Rows to render (default: 16)"
// @Success 200 {string} string
// @Failure 400 {object} map[string]string
// @Router /api/v1/hex [post]
func handleHex(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	data, err := readUpload(fh)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows, err := strconv.Atoi(c.DefaultQuery("rows", "16"))
	if err != nil || rows < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rows"})
		return
	}

	report := validator.Validate(fh.Filename, data, validator.Options{})
	offset := report.FirstOffset()
	if q := c.Query("offset"); q != "" {
		offset, err = strconv.Atoi(q)
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offset"})
			return
		}
	}

	opts := hexview.Window(offset, rows)
	opts.Plain = true
	c.String(http.StatusOK, hexview.Render(data, hexview.MarksFromReport(report), opts))
}

func validateUploads(c *gin.Context) ([]*validator.FileReport, bool) {
	opts, err := parseOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["file"]) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return nil, false
	}

	reports := make([]*validator.FileReport, 0, len(form.File["file"]))
	for _, fh := range form.File["file"] {
		data, err := readUpload(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, false
		}
		reports = append(reports, validator.Validate(fh.Filename, data, opts))
	}
	return reports, true
}

func parseOptions(c *gin.Context) (validator.Options, error) {
	var opts validator.Options
	var err error
	if opts.PairNotes, err = strconv.ParseBool(c.DefaultQuery("pair_notes", "false")); err != nil {
		return opts, errors.New("invalid pair_notes value")
	}
	if opts.Strict, err = strconv.ParseBool(c.DefaultQuery("strict", "false")); err != nil {
		return opts, errors.New("invalid strict value")
	}
	return opts, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > MaxUploadSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", fh.Filename, MaxUploadSize)
	}
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}
	return data, nil
}
