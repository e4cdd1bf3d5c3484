package char2vec

import "sort"

// A Batch holds the padded character-id matrix for a list
// of words.
//
// Every row starts with the start-token id, continues with
// the word's character ids, and is filled to PadLen with
// the end-token id.
// Lengths records each row's true content length,
// sentinels included.
type Batch struct {
	IDs     [][]int
	Lengths []int
	PadLen  int
}

// Rows returns the number of words in the batch.
func (b *Batch) Rows() int {
	return len(b.IDs)
}

// BatchVocab deduplicates the ids in a matrix.
//
// It returns the sorted distinct ids and a matrix of the
// same shape whose entries index into the distinct slice,
// so that distinct[remapped[i][j]] == ids[i][j].
func BatchVocab(ids [][]int) (distinct []int, remapped [][]int) {
	var flat []int
	for _, row := range ids {
		flat = append(flat, row...)
	}
	distinct, flatRemap := dedupIDs(flat)
	remapped = make([][]int, len(ids))
	idx := 0
	for i, row := range ids {
		remapped[i] = flatRemap[idx : idx+len(row)]
		idx += len(row)
	}
	return
}

// dedupIDs is BatchVocab for a flattened id list.
func dedupIDs(ids []int) (distinct []int, remapped []int) {
	seen := map[int]bool{}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			distinct = append(distinct, id)
		}
	}
	sort.Ints(distinct)
	indexOf := make(map[int]int, len(distinct))
	for i, id := range distinct {
		indexOf[id] = i
	}
	remapped = make([]int, len(ids))
	for i, id := range ids {
		remapped[i] = indexOf[id]
	}
	return
}
