// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the update rules used to train stacked LSTMs.
//
// # Overview
//
// This package contains:
//   - Adagrad: per-element adaptive step sizes from accumulated squared gradients
//   - ClipElementwise: symmetric element-wise gradient clipping
//   - Optimizer interface for custom update rules
//
// Every optimizer is bound to one parameter tensor. Layers create one per
// tensor, so a 2-layer stack owns 18 Adagrad instances.
//
// # Basic Usage
//
//	import "github.com/born-ml/stacklstm/optim"
//
//	opt := optim.NewAdagrad(rows, cols, optim.AdagradConfig{
//	    LR:  0.08,
//	    Eps: 1e-5,
//	})
//
//	// After a full backward pass:
//	optim.ClipElementwise(grad, optim.DefaultClip)
//	opt.Step(weight, grad)
//
// # Adagrad
//
// The update for every element is
//
//	accum += g * g
//	param -= lr * g / sqrt(accum + eps)
//
// Accumulators only grow, so effective step sizes only shrink.
package optim
