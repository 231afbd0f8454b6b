package bulk

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSampleSizes are the sample files cut from a full ABCD dataset.
var DefaultSampleSizes = []int{10, 50, 100}

type sampleFile struct {
	Train    []json.RawMessage `json:"train"`
	Metadata sampleMetadata    `json:"metadata"`
}

type sampleMetadata struct {
	Source             string `json:"source"`
	TotalConversations int    `json:"total_conversations"`
	SampleType         string `json:"sample_type"`
}

// WriteSamples reads an ABCD dataset (optionally gzipped) and writes
// abcd_sample_N.json files holding the first N train conversations.
// It returns the paths written.
func WriteSamples(srcPath, dir string, sizes []int) ([]string, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(srcPath, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	var data struct {
		Train []json.RawMessage `json:"train"`
	}
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if len(data.Train) == 0 {
		return nil, fmt.Errorf("dataset %s has no train conversations", srcPath)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []string
	for _, size := range sizes {
		if size <= 0 {
			continue
		}
		n := min(size, len(data.Train))
		sample := sampleFile{
			Train: data.Train[:n],
			Metadata: sampleMetadata{
				Source:             DatasetABCD,
				TotalConversations: n,
				SampleType:         fmt.Sprintf("First %d conversations", n),
			},
		}

		out, err := json.MarshalIndent(sample, "", "  ")
		if err != nil {
			return written, fmt.Errorf("encode sample: %w", err)
		}

		path := filepath.Join(dir, fmt.Sprintf("abcd_sample_%d.json", size))
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return written, fmt.Errorf("write sample: %w", err)
		}
		written = append(written, path)
	}
	return written, nil
}
