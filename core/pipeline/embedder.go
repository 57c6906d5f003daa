package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/knights-analytics/hugot"
)

// LocalEmbedderDim is the output dimension of the local embedder model.
const LocalEmbedderDim = 384

// prepareModel downloads the model if it doesn't exist and returns the model path
func prepareModel(modelName string) (string, error) {
	modelDir := "./models"
	modelPath := filepath.Join(modelDir, "sentence-transformers_all-MiniLM-L6-v2")

	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		if err := os.MkdirAll(modelDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create model directory: %w", err)
		}
		downloadOptions := hugot.NewDownloadOptions()
		downloadOptions.OnnxFilePath = "onnx/model.onnx"
		downloadedPath, err := hugot.DownloadModel(modelName, modelDir, downloadOptions)
		if err != nil {
			return "", fmt.Errorf("failed to download model: %w", err)
		}
		modelPath = downloadedPath
	}

	return modelPath, nil
}

// LocalEmbedder creates an EmbedFunc backed by a local sentence transformer
// model instead of a remote embedding service. Uses the all-MiniLM-L6-v2
// model which produces 384-dimensional embeddings, so the vector store must
// be created with LocalEmbedderDim. Useful for offline ingestion runs and
// for environments without a model endpoint.
func LocalEmbedder() (EmbedFunc, error) {
	modelName := "sentence-transformers/all-MiniLM-L6-v2"
	modelPath, err := prepareModel(modelName)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "embedder-pipeline",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create sentence pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create sentence pipeline: %w", err)
	}

	return func(ctx context.Context, text string) ([]float32, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := sentencePipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", err)
		}

		if len(result.Embeddings) == 0 {
			return nil, fmt.Errorf("no embedding generated")
		}

		return result.Embeddings[0], nil
	}, nil
}
