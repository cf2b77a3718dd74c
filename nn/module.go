// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/stacklstm/internal/nn"
)

// Module is the base interface for all components that own parameters.
//
// Every module must implement:
//   - Parameters: Return all trainable parameters in a stable order
//   - StateDict: Export parameter tensors by name
//   - LoadStateDict: Copy named tensors into the existing parameters
//
// Stack, Layer and ParameterSet implement Module.
type Module = nn.Module

// SequenceModule is a Module that is trained one window at a time.
//
// Forward records what Backward needs; Backward consumes that record.
// Layer implements SequenceModule.
type SequenceModule = nn.SequenceModule
