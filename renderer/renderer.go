package renderer

import "github.com/ByLCY/labelfit/labels"

// Renderer 将适配结果输出为最终文件，例如 PDF 预览。
// Render 返回生成的二进制数据（例如 PDF 字节切片）以及可能的错误。
type Renderer interface {
	Render(result *labels.Result) ([]byte, error)
}
