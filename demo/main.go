// Command demo embeds a handful of words with both
// char2vec encoders and prints pairwise cosine
// similarities, showing that related spellings land near
// each other even with random weights at play.
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/tuglat/twitter-langid/char2vec"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/essentials"
)

func main() {
	words := os.Args[1:]
	if len(words) == 0 {
		words = []string{"cat", "cats", "catalog", "dog", "doge"}
	}

	c := anyvec32.CurrentCreator()
	vocab := asciiVocab()
	params := &char2vec.Params{
		WordEmbedDims:    32,
		Layer1HiddenSize: 24,
		Layer1OutSize:    16,
		Layer2HiddenSize: 24,
		MaxSequenceLen:   15,
	}

	lstm, err := char2vec.NewCharLSTM(c, vocab, params)
	if err != nil {
		essentials.Die(err)
	}
	cnn, err := char2vec.NewCharCNN(c, vocab, params)
	if err != nil {
		essentials.Die(err)
	}

	printSimilarities("CharLSTM", lstm, words)
	printSimilarities("CharCNN", cnn, words)
}

func printSimilarities(name string, enc char2vec.Encoder, words []string) {
	batch, err := enc.MakeMatrix(words, 0)
	if err != nil {
		essentials.Die(err)
	}
	embs := enc.Embed(batch).Output().Data().([]float32)
	dim := enc.Dim()

	fmt.Println(name + ":")
	for i := range words {
		for j := i + 1; j < len(words); j++ {
			sim := cosine(embs[i*dim:(i+1)*dim], embs[j*dim:(j+1)*dim])
			fmt.Printf("  %s / %s: %.3f\n", words[i], words[j], sim)
		}
	}
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func asciiVocab() char2vec.MapVocab {
	vocab := char2vec.MapVocab{
		char2vec.StartToken: 0,
		char2vec.EndToken:   1,
	}
	for ch := byte(' '); ch <= '~'; ch++ {
		vocab[string(ch)] = len(vocab)
	}
	return vocab
}
