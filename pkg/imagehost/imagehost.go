package imagehost

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Config holds image host connection details.
type Config struct {
	// UploadURL is the full upload endpoint, e.g.
	// https://api.cloudinary.com/v1_1/<cloud>/image/upload
	UploadURL string
	// UploadPreset is sent as the unsigned upload preset when set.
	UploadPreset string
	// Folder is the remote folder assets are stored under when set.
	Folder string
}

// Client uploads local files to an external image host over HTTP.
type Client struct {
	cfg Config
}

// NewClient creates a new image host client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.UploadURL == "" {
		return nil, fmt.Errorf("image host upload URL is required")
	}
	return &Client{cfg: cfg}, nil
}

// uploadResponse is the subset of the host's response we care about.
type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

// Upload posts the file at localPath to the host as a multipart form and
// returns the durable URL of the stored asset.
func (c *Client) Upload(localPath string) (string, error) {
	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	if c.cfg.UploadPreset != "" {
		args.Set("upload_preset", c.cfg.UploadPreset)
	}
	if c.cfg.Folder != "" {
		args.Set("folder", c.cfg.Folder)
	}

	agent := fiber.Post(c.cfg.UploadURL)
	agent.SendFile(localPath, "file").MultipartForm(args)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return "", fmt.Errorf("failed to reach image host: %w", errs[0])
	}
	if code < 200 || code >= 300 {
		return "", fmt.Errorf("image host returned status %d", code)
	}

	var res uploadResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("failed to decode image host response: %w", err)
	}
	if res.SecureURL == "" {
		return "", fmt.Errorf("image host response missing secure_url")
	}
	return res.SecureURL, nil
}

// fileSizeUnits are 1000-based, matching the size strings stored on
// product image records.
var fileSizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// FileSizeFormatter renders a raw byte count as a human-readable string
// with at most the given number of decimals, e.g. 2621440 -> "2.62 MB".
// Trailing zeros are trimmed.
func FileSizeFormatter(bytes int64, decimals int) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	idx := int(math.Floor(math.Log(float64(bytes)) / math.Log(1000)))
	if idx >= len(fileSizeUnits) {
		idx = len(fileSizeUnits) - 1
	}
	value := float64(bytes) / math.Pow(1000, float64(idx))
	s := strconv.FormatFloat(value, 'f', decimals, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s + " " + fileSizeUnits[idx]
}
