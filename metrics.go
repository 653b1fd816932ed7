// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Proof validation outcomes, used as the result label.
const (
	resultCurrent    = "current"
	resultSuperseded = "superseded"
	resultUnknown    = "unknown"
	resultExpired    = "expired"
	resultFault      = "fault"
)

type authMetrics struct {
	proofsValidated *prometheus.CounterVec
	rotations       prometheus.Counter
	currentEpoch    prometheus.Gauge
}

func newAuthMetrics(registerer prometheus.Registerer) *authMetrics {
	m := authMetrics{
		proofsValidated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_proofs_validated_count",
				Help: "Number of proofs validated, by outcome",
			},
			[]string{"result"},
		),
		rotations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "auth_rotations_count",
				Help: "Number of committed operatorship transfers",
			},
		),
		currentEpoch: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "auth_current_epoch",
				Help: "Epoch of the live operator set",
			},
		),
	}

	registerer.MustRegister(m.proofsValidated)
	registerer.MustRegister(m.rotations)
	registerer.MustRegister(m.currentEpoch)

	return &m
}
