package ingestion

const (
	// DefaultChunkChars はチャンクの文字数
	DefaultChunkChars = 900

	// DefaultOverlap は隣接チャンク間で重複させる文字数
	DefaultOverlap = 120
)

// ChunkText はテキストを固定長のスライスに分割する。
// 次のチャンクは overlap 文字だけ巻き戻した位置から始まる。
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkChars
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultOverlap
		if overlap >= size {
			overlap = 0
		}
	}

	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < n {
		end := start + size
		if end > n {
			end = n
		}
		chunks = append(chunks, string(runes[start:end]))
		if end >= n {
			break
		}
		start = end - overlap
	}
	return chunks
}
