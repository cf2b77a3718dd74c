// Package tokenizer maps text to symbol ids and back.
//
// The models in this module are character-level: every distinct rune of the
// training corpus is one symbol, and a symbol enters the network as a
// one-hot vector over the vocabulary.
//
// Example usage:
//
//	vocab := tokenizer.NewCharVocabulary(corpus)
//
//	// Encode text
//	ids, err := vocab.Encode("hello")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// One-hot input for the network
//	x, err := vocab.OneHot(ids[0])
//
//	// Decode ids
//	text, err := vocab.Decode(ids)
package tokenizer
