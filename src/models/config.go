package models

// MConfig Structure
type MConfig struct {
	Name     string          `yaml:"name"`
	Host     string          `yaml:"host"`
	Port     int             `yaml:"port"`
	LogLevel string          `yaml:"log_level"`
	Monitor  MMonitorConfig  `yaml:"monitor"`
	Storage  MStorageConfig  `yaml:"storage"`
	Model    MModelConfig    `yaml:"model"`
	Training MTrainingConfig `yaml:"training"`
	Protocol MProtocolConfig `yaml:"protocol"`
}

type MMonitorConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	MarketMIC string `yaml:"market_mic"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MModelConfig struct {
	InputWindow    int     `yaml:"input_window"`    // W, lookback ticks
	PredictHorizon int     `yaml:"predict_horizon"` // future ticks covered by the path
	PredictStride  int     `yaml:"predict_stride"`  // subsample step inside the horizon
	TimeFeatures   bool    `yaml:"time_features"`   // dual-tower variant switch
	ArtifactPath   string  `yaml:"artifact_path"`
	LearningRate   float64 `yaml:"learning_rate"`
}

// OutputSteps is the number of points in a predicted path.
func (m MModelConfig) OutputSteps() int {
	if m.PredictStride <= 0 {
		return 0
	}
	return m.PredictHorizon / m.PredictStride
}

type MTrainingConfig struct {
	TrainLimit   int `yaml:"train_limit"` // max ticks fetched for one TRAIN
	BatchSize    int `yaml:"batch_size"`
	Epochs       int `yaml:"epochs"`
	SampleStride int `yaml:"sample_stride"` // step between training windows
	Margin       int `yaml:"margin"`        // safety buffer beyond window+horizon
}

type MProtocolConfig struct {
	MaxLineBytes       int `yaml:"max_line_bytes"`
	ReadTimeoutSeconds int `yaml:"read_timeout_seconds"`
}
