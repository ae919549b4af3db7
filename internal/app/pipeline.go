package app

import (
	"time"

	"github.com/ayusman/handsoff/internal/alert"
	"github.com/ayusman/handsoff/internal/capture"
	"github.com/ayusman/handsoff/internal/classifier"
	"github.com/ayusman/handsoff/internal/config"
	"github.com/ayusman/handsoff/internal/embed"
	"github.com/ayusman/handsoff/internal/session"
)

// SettingEmbedder is the settings key recording which embedder is in use.
const SettingEmbedder = "embedder"

// pipeline is the frame -> embedding -> classifier -> alert chain owned by a
// session.
type pipeline struct {
	knn     *classifier.KNN
	gate    *alert.Gate
	session *session.Session
}

// buildPipeline assembles the detection chain. The session owns the
// classifier adapter and the gate.
func buildPipeline(cfg config.Config, cam capture.Camera, emb embed.Embedder, player alert.Player, notifier alert.Notifier) pipeline {
	knn := classifier.NewKNN(cfg.Detection.Neighbors)
	adapter := classifier.NewAdapter(cam, emb, knn)

	gate := alert.NewGate(player, notifier, alert.Message{
		Title: cfg.Alert.Title,
		Body:  cfg.Alert.Body,
	})

	sess := session.New(adapter, gate, sessionConfig(cfg))
	return pipeline{knn: knn, gate: gate, session: sess}
}

func sessionConfig(cfg config.Config) session.Config {
	return session.Config{
		SampleCount:      cfg.Training.Samples,
		TrainingDuration: cfg.TrainingDuration(),
		TickInterval:     cfg.TickInterval(),
		Threshold:        cfg.Detection.Threshold,
	}
}

func cameraConfig(c config.Camera) capture.Config {
	return capture.Config{
		DeviceID: c.Device,
		Width:    c.Width,
		Height:   c.Height,
		FPS:      c.FPS,
		Warmup:   time.Duration(c.WarmupMs) * time.Millisecond,
	}
}

func embedConfig(m config.Model) embed.Config {
	ec := embed.DefaultConfig()
	ec.ModelPath = m.Path
	ec.ConfigPath = m.ConfigPath
	if m.InputSize > 0 {
		ec.InputSize = m.InputSize
	}
	if m.Scale != 0 {
		ec.Scale = m.Scale
	}
	for i := 0; i < len(m.Mean) && i < 3; i++ {
		ec.Mean[i] = m.Mean[i]
	}
	ec.SwapRB = m.SwapRB
	ec.OutputLayer = m.OutputLayer
	return ec
}
