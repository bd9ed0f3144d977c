package server

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"trade-brain/src/feature"
	"trade-brain/src/interfaces"
	"trade-brain/src/live"
	"trade-brain/src/logger"
	"trade-brain/src/models"
)

// -----------------------------------------------------------------------------
// Orchestrator is the business logic layer: it maps the three request kinds
// onto the store, builder, predictor and live window, and turns every
// outcome (including faults) into one of the wire response shapes. Nothing
// escapes past this layer to kill a connection.
// -----------------------------------------------------------------------------

type Orchestrator struct {
	Config    *models.MConfig
	Store     interfaces.ITickStore
	Predictor interfaces.IPredictor
	Window    *live.WindowTracker
	Builder   *feature.TrainingSetBuilder
	Publisher interfaces.IStatePublisher // optional, nil when monitor disabled
	Logger    *logger.Logger

	mu               sync.Mutex
	ticksIngested    int64
	lastValLoss      float64
	lastPredictionAt int64
}

// -----------------------------------------------------------------------------

func NewOrchestrator(
	cfg *models.MConfig,
	store interfaces.ITickStore,
	pred interfaces.IPredictor,
	window *live.WindowTracker,
	builder *feature.TrainingSetBuilder,
	publisher interfaces.IStatePublisher,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		Config:    cfg,
		Store:     store,
		Predictor: pred,
		Window:    window,
		Builder:   builder,
		Publisher: publisher,
		Logger:    log,
	}
}

// -----------------------------------------------------------------------------

// Process dispatches one parsed request and always returns a structured
// response.
func (o *Orchestrator) Process(req models.MRequest) (resp interface{}) {
	defer func() {
		if r := recover(); r != nil {
			o.Logger.Error("Panic while processing %s request: %v", req.Type, r)
			resp = models.MErrorResponse{Status: "error", Msg: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	switch req.Type {
	case models.ReqFeedData:
		return o.handleFeedData(req)
	case models.ReqPredict:
		return o.handlePredict(req)
	case models.ReqTrain:
		return o.handleTrain()
	default:
		return models.MErrorResponse{Status: "error", Msg: "unknown type"}
	}
}

// -----------------------------------------------------------------------------
// FEED_DATA
// -----------------------------------------------------------------------------

func (o *Orchestrator) handleFeedData(req models.MRequest) interface{} {
	if len(req.Data) == 0 {
		return models.MErrorResponse{Status: "error", Msg: "no data provided"}
	}

	ticks := cleanTicks(req.Data)
	if len(ticks) == 0 {
		return models.MErrorResponse{Status: "error", Msg: "no valid ticks in batch"}
	}

	count, err := o.Store.SaveTicksBulk(ticks)
	if err != nil {
		o.Logger.Error("Bulk save failed: %v", err)
		return models.MErrorResponse{Status: "error", Msg: err.Error()}
	}

	o.mu.Lock()
	o.ticksIngested += int64(count)
	o.mu.Unlock()
	o.publishState()

	o.Logger.Debug("Saved %d ticks (latest timestamp %.0f)", count, ticks[len(ticks)-1].Timestamp)
	return models.MFeedResponse{Status: "saved", Count: count}
}

// -----------------------------------------------------------------------------

// cleanTicks filters a raw feed batch down to well-formed [timestamp, price]
// pairs. Some feeders double-encode items as "[ts, price]" strings, so those
// are decoded too; anything else is dropped without failing the batch.
func cleanTicks(items []json.RawMessage) []models.MTick {
	cleaned := make([]models.MTick, 0, len(items))

	for _, raw := range items {
		var pair []float64
		if err := json.Unmarshal(raw, &pair); err != nil {
			var encoded string
			if err := json.Unmarshal(raw, &encoded); err != nil {
				continue
			}
			if err := json.Unmarshal([]byte(encoded), &pair); err != nil {
				continue
			}
		}
		if len(pair) < 2 {
			continue
		}
		cleaned = append(cleaned, models.MTick{Timestamp: pair[0], Price: pair[1]})
	}

	return cleaned
}

// -----------------------------------------------------------------------------
// PREDICT
// -----------------------------------------------------------------------------

func (o *Orchestrator) handlePredict(req models.MRequest) interface{} {
	if req.Price == nil {
		return models.MErrorResponse{Status: "error", Msg: "no price provided"}
	}
	if o.Config.Model.TimeFeatures && req.Timestamp == nil {
		return models.MErrorResponse{Status: "error", Msg: "no timestamp provided"}
	}

	window, size, err := o.Window.PushAndSnapshot(*req.Price)
	if err != nil {
		return models.MWaitResponse{
			Type: "WAIT",
			Msg:  fmt.Sprintf("%d/%d", size, o.Window.Capacity()),
		}
	}

	values, mean, std := feature.Normalize(window)
	sample := models.MNormalizedSample{Values: values}
	if o.Config.Model.TimeFeatures {
		tf := feature.TimeFeatures(*req.Timestamp)
		sample.Time = &tf
	}

	pathZ, err := o.Predictor.Predict(sample)
	if err != nil {
		o.Logger.Warning("Prediction failed: %v", err)
		return models.MErrorResponse{Status: "error", Msg: err.Error()}
	}

	prices := feature.Denormalize(pathZ, mean, std)
	path := feature.ToRelative(prices, window[len(window)-1])

	o.mu.Lock()
	o.lastPredictionAt = time.Now().Unix()
	o.mu.Unlock()
	o.publishState()

	return models.MPathResponse{Type: "PATH", Price: *req.Price, Path: path}
}

// -----------------------------------------------------------------------------
// TRAIN
// -----------------------------------------------------------------------------

// handleTrain fetches recent history, builds the training set and runs the
// predictor. The predictor serializes overlapping TRAIN requests itself, so
// a second one issued mid-run waits for the first.
func (o *Orchestrator) handleTrain() interface{} {
	need := o.Config.Model.InputWindow + o.Config.Model.PredictHorizon

	var prices, timestamps []float64

	if o.Config.Model.TimeFeatures {
		ticks, err := o.Store.FetchRecentTicks(o.Config.Training.TrainLimit)
		if err != nil {
			o.Logger.Error("History fetch failed: %v", err)
			return models.MErrorResponse{Status: "error", Msg: err.Error()}
		}
		prices = make([]float64, len(ticks))
		timestamps = make([]float64, len(ticks))
		for i, t := range ticks {
			prices[i] = t.Price
			timestamps[i] = t.Timestamp
		}
	} else {
		var err error
		prices, err = o.Store.FetchRecentPrices(o.Config.Training.TrainLimit)
		if err != nil {
			o.Logger.Error("History fetch failed: %v", err)
			return models.MErrorResponse{Status: "error", Msg: err.Error()}
		}
	}

	if len(prices) < need {
		return models.MErrorResponse{
			Status: "error",
			Msg:    fmt.Sprintf("insufficient data: need at least %d ticks, have %d", need, len(prices)),
		}
	}

	samples, err := o.Builder.Build(prices, timestamps)
	if err != nil {
		return models.MErrorResponse{Status: "error", Msg: err.Error()}
	}

	o.Logger.Info("Training on %d samples from %d ticks", len(samples), len(prices))

	metrics, err := o.Predictor.Train(samples)
	if err != nil {
		o.Logger.Error("Training failed: %v", err)
		return models.MErrorResponse{Status: "error", Msg: err.Error()}
	}

	o.mu.Lock()
	o.lastValLoss = metrics.FinalValLoss
	o.mu.Unlock()
	o.publishState()

	return models.MTrainResponse{Status: "ok", ValLoss: metrics.FinalValLoss}
}

// -----------------------------------------------------------------------------
// Monitor state
// -----------------------------------------------------------------------------

func (o *Orchestrator) publishState() {
	if o.Publisher == nil {
		return
	}

	stored, err := o.Store.CountTicks()
	if err != nil {
		o.Logger.Debug("Tick count unavailable: %v", err)
	}

	o.mu.Lock()
	state := models.MMonitorState{
		TicksStored:      stored,
		TicksIngested:    o.ticksIngested,
		WindowFill:       o.Window.Size(),
		WindowCapacity:   o.Window.Capacity(),
		ModelReady:       o.Predictor.IsReady(),
		LastValLoss:      o.lastValLoss,
		LastPredictionAt: o.lastPredictionAt,
		Timestamp:        time.Now().Unix(),
	}
	o.mu.Unlock()

	o.Publisher.Publish(state)
}
