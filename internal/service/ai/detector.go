package ai

import (
	"fmt"
	"image"
	"os"
	"sync"
	"zoneguard/internal/config"
	"zoneguard/internal/detection"
	"zoneguard/internal/geometry"
	"zoneguard/internal/logger"

	"gocv.io/x/gocv"
)

// DefaultDetectionThreshold is used when the configured threshold is outside (0, 1).
const DefaultDetectionThreshold = 0.5

type DetectorService struct {
	net           gocv.Net
	mu            sync.Mutex
	modelPath     string
	configPath    string
	threshold     float32
	personClassID int
	logger        *logger.Logger
}

// NewDetectorService creates a detector with model/config paths and a logger.
// It attempts to initialize the underlying DNN network; a missing model is
// logged and every later DetectObjects call fails until one is provided.
func NewDetectorService(config *config.Config, logger *logger.Logger) *DetectorService {
	threshold := config.DetectionThreshold
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultDetectionThreshold
	}

	service := &DetectorService{
		modelPath:     config.ModelPath,
		configPath:    config.ConfigPath,
		threshold:     float32(threshold),
		personClassID: config.PersonClassID,
		logger:        logger,
	}

	if err := service.initializeNet(); err != nil {
		service.logger.Warning("Could not initialize detection network: %v", err)
	}

	return service
}

// initializeNet loads the DNN network and sets backend/target preferences.
func (s *DetectorService) initializeNet() error {
	if _, err := os.Stat(s.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", s.modelPath)
	}

	if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", s.configPath)
	}

	net := gocv.ReadNet(s.modelPath, s.configPath)

	if net.Empty() {
		return fmt.Errorf("failed to load network")
	}
	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)

	if errBackend != nil || errTarget != nil {
		net.Close()
		return fmt.Errorf("failed to set preferable backend or target")
	}

	s.net = net
	s.logger.Info("Detection network initialized successfully")
	return nil
}

// Ready reports whether a network is loaded.
func (s *DetectorService) Ready() bool {
	return !s.net.Empty()
}

// PersonClassID returns the class id treated as a person.
func (s *DetectorService) PersonClassID() int {
	return s.personClassID
}

// DetectObjects runs the DNN on the frame and returns every detection above
// the confidence threshold, with boxes in frame pixel coordinates.
func (s *DetectorService) DetectObjects(frame gocv.Mat) ([]detection.Result, error) {
	if s.net.Empty() {
		return nil, fmt.Errorf("detection network not initialized")
	}
	if frame.Empty() {
		return nil, fmt.Errorf("frame is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Create blob with parameters that fit ssd coco net input
	blob := gocv.BlobFromImage(frame, 1.0/127.5, image.Pt(300, 300), gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")

	output := s.net.Forward("")
	defer output.Close()

	cols := float32(frame.Cols())
	rows := float32(frame.Rows())

	var results []detection.Result

	// Process detections with output: [ batch_id, class_id, confidence, x1, y1, x2, y2 ]
	outputReshaped := output.Reshape(1, output.Total()/7)
	defer outputReshaped.Close()
	for i := 0; i < outputReshaped.Rows(); i++ {
		confidence := outputReshaped.GetFloatAt(i, 2)
		if confidence <= s.threshold {
			continue
		}

		classID := int(outputReshaped.GetFloatAt(i, 1))
		results = append(results, detection.Result{
			ClassID:    classID,
			Label:      s.classLabel(classID),
			Confidence: float64(confidence),
			Box: geometry.Box{
				X1: float64(outputReshaped.GetFloatAt(i, 3) * cols),
				Y1: float64(outputReshaped.GetFloatAt(i, 4) * rows),
				X2: float64(outputReshaped.GetFloatAt(i, 5) * cols),
				Y2: float64(outputReshaped.GetFloatAt(i, 6) * rows),
			},
		})
	}

	return results, nil
}

// Close releases the network.
func (s *DetectorService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.net.Empty() {
		return nil
	}
	return s.net.Close()
}

// classLabel maps model class IDs to human-readable labels.
func (s *DetectorService) classLabel(classID int) string {
	if classID == s.personClassID {
		return "person"
	}

	labels := map[int]string{
		2:  "bicycle",
		3:  "car",
		4:  "motorcycle",
		6:  "bus",
		8:  "truck",
		16: "bird",
		17: "cat",
		18: "dog",
	}

	if label, exists := labels[classID]; exists {
		return label
	}
	return fmt.Sprintf("class%d", classID)
}
