package markdown

import "strings"

// Block delimits generated content inside a user-editable note.
type Block struct {
	Start string
	End   string
}

func NewBlock(name string) Block {
	return Block{
		Start: "<!-- studytrack:" + name + ":start -->",
		End:   "<!-- studytrack:" + name + ":end -->",
	}
}

// Replace swaps the block's generated content in body, appending the block
// when body has none. Text outside the markers is kept as written.
func (b Block) Replace(body, generated string) string {
	start := strings.Index(body, b.Start)
	end := strings.Index(body, b.End)
	block := b.Start + "\n" + generated + "\n" + b.End

	if start >= 0 && end > start {
		end += len(b.End)
		return body[:start] + block + body[end:]
	}

	if strings.TrimSpace(body) == "" {
		return block + "\n"
	}
	if strings.HasSuffix(body, "\n") {
		return body + "\n" + block + "\n"
	}
	return body + "\n\n" + block + "\n"
}
