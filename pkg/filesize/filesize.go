package filesize

import (
	"math"
	"strconv"
)

var units = []string{"Bytes", "KB", "MB", "GB"}

// Format 人类可读的文件大小
// 与前端展示保持一致：0 → "0 Bytes"，1024 → "1 KB"，1536 → "1.5 KB"
// （1024 进制，保留两位小数并去除尾随零，上限 GB）
func Format(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}

	v := float64(bytes) / math.Pow(1024, float64(i))
	v = math.Round(v*100) / 100

	return strconv.FormatFloat(v, 'f', -1, 64) + " " + units[i]
}
