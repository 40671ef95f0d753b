package filesize

import "testing"

func TestFormat(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{0, "0 Bytes"},
		{-5, "0 Bytes"},
		{1, "1 Bytes"},
		{512, "512 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{10240, "10 KB"},
		{1048576, "1 MB"},
		{5 * 1048576, "5 MB"},
		{1073741824, "1 GB"},
	}

	for _, c := range cases {
		if got := Format(c.bytes); got != c.want {
			t.Errorf("Format(%d): 期望 %q，实际 %q", c.bytes, c.want, got)
		}
	}
}
