package train

import (
	"github.com/sirupsen/logrus"
)

// Observer receives training progress.
//
// Callbacks run synchronously on the training goroutine between steps.
type Observer interface {
	// OnLoss reports the loss of a training step.
	OnLoss(step int64, loss float64)

	// OnSample reports a greedy sample taken after an epoch.
	OnSample(epoch int, sample string)
}

// Callbacks adapts plain functions to Observer. Nil fields are skipped.
type Callbacks struct {
	Loss   func(step int64, loss float64)
	Sample func(epoch int, sample string)
}

// OnLoss calls c.Loss if set.
func (c Callbacks) OnLoss(step int64, loss float64) {
	if c.Loss != nil {
		c.Loss(step, loss)
	}
}

// OnSample calls c.Sample if set.
func (c Callbacks) OnSample(epoch int, sample string) {
	if c.Sample != nil {
		c.Sample(epoch, sample)
	}
}

// LogObserver writes progress as structured log entries tagged with a run id.
type LogObserver struct {
	entry *logrus.Entry
}

// NewLogObserver creates a LogObserver. A nil logger uses logrus.New().
func NewLogObserver(logger *logrus.Logger, runID string) *LogObserver {
	if logger == nil {
		logger = logrus.New()
	}
	return &LogObserver{entry: logger.WithField("run_id", runID)}
}

// OnLoss logs the step loss at info level.
func (o *LogObserver) OnLoss(step int64, loss float64) {
	o.entry.WithFields(logrus.Fields{
		"step": step,
		"loss": loss,
	}).Info("Training step completed")
}

// OnSample logs the sample at info level.
func (o *LogObserver) OnSample(epoch int, sample string) {
	o.entry.WithFields(logrus.Fields{
		"epoch":  epoch,
		"sample": sample,
	}).Info("Sample")
}

// multiObserver fans progress out to several observers in order.
type multiObserver []Observer

func (m multiObserver) OnLoss(step int64, loss float64) {
	for _, o := range m {
		o.OnLoss(step, loss)
	}
}

func (m multiObserver) OnSample(epoch int, sample string) {
	for _, o := range m {
		o.OnSample(epoch, sample)
	}
}
