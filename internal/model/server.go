package model

import (
	"fmt"
	"image"
	"log"

	ort "github.com/yalue/onnxruntime_go"
)

type Server struct {
	session      *ort.AdvancedSession
	Metadata     Metadata
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// NewServer loads an ONNX classifier. libraryPath points at the onnxruntime
// shared library; empty keeps the platform default.
func NewServer(modelPath, metadataPath, libraryPath string) (*Server, error) {
	metadata, err := LoadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}

	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	inputShape := ort.NewShape(metadata.InputShape...)
	outputShape := ort.NewShape(metadata.OutputShape...)

	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	log.Printf("Loaded model %s with %d classes", modelPath, len(metadata.Classes))

	return &Server{
		session:      session,
		Metadata:     metadata,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

func (s *Server) Predict(inputData []float32) (*PredictionResponse, error) {
	input := s.inputTensor.GetData()
	if len(inputData) != len(input) {
		return nil, fmt.Errorf("expected %d input values, got %d", len(input), len(inputData))
	}
	copy(input, inputData)

	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	return decide(s.outputTensor.GetData(), s.Metadata.Classes)
}

// Classify preprocesses img for the model and returns the predicted class.
func (s *Server) Classify(img image.Image) (string, error) {
	result, err := s.Predict(Preprocess(img, s.Metadata.ImageSize))
	if err != nil {
		return "", err
	}
	return result.Class, nil
}

// Classes lists the labels the model predicts, in output order.
func (s *Server) Classes() []string {
	return s.Metadata.Classes
}

// decide picks the highest scoring class out of the raw model output.
func decide(outputData []float32, classes []string) (*PredictionResponse, error) {
	if len(outputData) == 0 {
		return nil, fmt.Errorf("model produced no output")
	}

	maxIdx := 0
	maxVal := outputData[0]
	predictions := make(map[string]float32)

	for i, val := range outputData {
		if i < len(classes) {
			predictions[classes[i]] = val
			if val > maxVal {
				maxVal = val
				maxIdx = i
			}
		}
	}
	if maxIdx >= len(classes) {
		return nil, fmt.Errorf("model output index %d has no class label", maxIdx)
	}

	return &PredictionResponse{
		Class:       classes[maxIdx],
		Confidence:  maxVal,
		Predictions: predictions,
	}, nil
}

func (s *Server) Close() {
	if s.inputTensor != nil {
		s.inputTensor.Destroy()
	}
	if s.outputTensor != nil {
		s.outputTensor.Destroy()
	}
	if s.session != nil {
		s.session.Destroy()
	}
	ort.DestroyEnvironment()
}
