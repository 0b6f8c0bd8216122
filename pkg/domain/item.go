package domain

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

const (
	DefaultBinaryPropertyName = "data"
)

type PairedItem struct {
	Item int `json:"item"`
}

type BinaryData struct {
	Data          []byte `json:"data"`
	MimeType      string `json:"mime_type"`
	FileName      string `json:"file_name,omitempty"`
	FileExtension string `json:"file_extension,omitempty"`
	FileSize      int    `json:"file_size"`
}

func NewBinaryData(data []byte, fileName, mimeType string) BinaryData {
	return BinaryData{
		Data:          data,
		MimeType:      mimeType,
		FileName:      fileName,
		FileExtension: strings.TrimPrefix(filepath.Ext(fileName), "."),
		FileSize:      len(data),
	}
}

// ExecutionItem is one unit of workflow input: its JSON plus any attachments.
type ExecutionItem struct {
	JSON       map[string]any        `json:"json"`
	Binary     map[string]BinaryData `json:"binary,omitempty"`
	PairedItem *PairedItem           `json:"paired_item,omitempty"`
}

// BinaryBuffer returns the attachment stored under name.
func (i ExecutionItem) BinaryBuffer(itemIndex int, name string) (BinaryData, error) {
	binary, ok := i.Binary[name]
	if !ok {
		return BinaryData{}, NewConfigurationError(itemIndex, fmt.Sprintf("No binary data property %q exists on item", name))
	}

	if len(binary.Data) == 0 {
		return BinaryData{}, NewConfigurationError(itemIndex, fmt.Sprintf("Binary data property %q is empty", name))
	}

	return binary, nil
}

// ExpressionData is the view of an item exposed to settings expressions.
func (i ExecutionItem) ExpressionData() map[string]any {
	binary := map[string]any{}

	for key, b := range i.Binary {
		binary[key] = map[string]any{
			"mimeType":      b.MimeType,
			"fileName":      b.FileName,
			"fileExtension": b.FileExtension,
			"fileSize":      b.FileSize,
		}
	}

	json := i.JSON
	if json == nil {
		json = map[string]any{}
	}

	return map[string]any{
		"json":   json,
		"binary": binary,
	}
}

// NodeResult is the normalized output of one item, with the upstream response kept
// alongside rather than merged into it.
type NodeResult struct {
	JSON       any                   `json:"json"`
	Raw        any                   `json:"raw,omitempty"`
	Binary     map[string]BinaryData `json:"binary,omitempty"`
	PairedItem PairedItem            `json:"paired_item"`
	Error      string                `json:"error,omitempty"`
}

// BinaryKey names the idx-th attachment produced by one item: data, data_1, data_2, ...
func BinaryKey(idx int) string {
	if idx == 0 {
		return DefaultBinaryPropertyName
	}

	return fmt.Sprintf("%s_%d", DefaultBinaryPropertyName, idx)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))

	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// IndexedItem is an item together with its position, as handed to the parameter binder.
type IndexedItem struct {
	Item  ExecutionItem
	Index int
}

func (i IndexedItem) ExpressionData() map[string]any {
	data := i.Item.ExpressionData()
	data["itemIndex"] = i.Index

	return data
}
