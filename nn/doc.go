// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides stacked LSTM building blocks for character-level models.
//
// # Overview
//
// This package contains:
//   - Cell: one LSTM cell with hand-written backpropagation through time
//   - Layer: a Cell with one Adagrad optimizer per parameter tensor
//   - Stack: layers chained bottom to top, the last one scoring symbols
//   - Checkpoint: a Stack saved together with its vocabulary
//   - Initialization: Uniform, Xavier, Zeros
//
// # Basic Usage
//
//	import "github.com/born-ml/stacklstm/nn"
//
//	func main() {
//	    stack, err := nn.NewStack(nn.StackConfig{
//	        Layers: 2,
//	        Hidden: 100,
//	        Vocab:  vocab.VocabSize(),
//	        Seed:   1,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // One training step over a window of one-hot vectors
//	    loss, err := stack.TrainStep(xs, ys)
//
//	    // Greedy continuation of 20 symbols after symbol 3
//	    ids, err := stack.Sample(3, 20)
//	}
//
// # Topology
//
// Every layer has the same hidden size H. The bottom layer reads one-hot
// symbols (V wide), every other layer reads the hidden states of the layer
// below (H wide). Only the top layer owns the softmax projection to V
// scores, so only the top layer compares against targets. Errors flow back
// down the stack through the input part of each layer's gradient.
//
// # Checkpoints
//
//	checkpoint := &nn.Checkpoint{Model: stack, Symbols: vocab.Symbols()}
//	if err := checkpoint.Save("model.safetensors"); err != nil {
//	    log.Fatal(err)
//	}
//
//	loaded, err := nn.LoadCheckpoint("model.safetensors", nn.LayerConfig{})
package nn
