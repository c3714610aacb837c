package ocr

import (
	"context"
	"errors"
	"image"
	"os"
	"slices"
	"strings"
	"testing"

	"hardsub/internal/services"
)

func TestParsePaddleJSONShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		texts []string
	}{
		{"null", `null`, nil},
		{"empty", `[]`, nil},
		{"invalid json", `not json`, nil},
		{"classic", `[[[[0,0],[10,0],[10,5],[0,5]],["你好",0.98]],[[[0,6],[10,6],[10,9],[0,9]],["世界",0.9]]]`, []string{"你好", "世界"}},
		{"single classic line", `[[[[0,0],[10,0],[10,5],[0,5]],["一行",0.9]]]`, []string{"一行"}},
		{"page wrapped", `[[[[[0,0],[10,0],[10,5],[0,5]],["包裹",0.9]]]]`, []string{"包裹"}},
		{"page of null", `[null]`, nil},
		{"empty page", `[[]]`, nil},
		{"objects", `[{"box":[[0,0],[4,0],[4,4],[0,4]],"text":"对象","score":0.5}]`, []string{"对象"}},
		{"envelope", `{"code":100,"data":[{"box":[[0,0],[4,0],[4,4],[0,4]],"score":0.9,"text":"信封"}]}`, []string{"信封"}},
		{"envelope no text", `{"code":101,"data":"No text found in image."}`, nil},
		{"text only info", `[[[[0,0],[1,0],[1,1],[0,1]],"裸文本"]]`, []string{"裸文本"}},
		{"malformed entries dropped", `[5, "x", [1], [[[0,0]], [42, 1]], [[[0,0],[1,0],[1,1],[0,1]],["留下",1]]]`, []string{"留下"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cands := ParsePaddleJSON([]byte(tt.input))
			var texts []string
			for _, c := range cands {
				texts = append(texts, c.Text)
			}
			if !slices.Equal(texts, tt.texts) {
				t.Fatalf("texts = %q, want %q", texts, tt.texts)
			}
		})
	}
}

func TestParsePaddleJSONKeepsShortBoxesForMerge(t *testing.T) {
	cands := ParsePaddleJSON([]byte(`[[[[0,0],[1,1]],["短",0.9]]]`))
	if len(cands) != 1 || len(cands[0].Box) != 2 {
		t.Fatalf("expected one candidate with a two-point box, got %+v", cands)
	}
	if text, _ := Merge(cands, image.Point{}); text != "" {
		t.Fatalf("merge should reject short box, got %q", text)
	}
}

func TestParsePaddleJSONKeepsLineWithMalformedVertex(t *testing.T) {
	for name, input := range map[string]string{
		"null vertex":  `[[[[0,0],[10,0],[10,10],null],["hi",0.9]]]`,
		"short vertex": `[[[[0,0],[10,0],[10,10],[3]],["hi",0.9]]]`,
		"object":       `[{"box":[[0,0],[10,0],[10,10],"bad"],"text":"hi"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			cands := ParsePaddleJSON([]byte(input))
			if len(cands) != 1 || len(cands[0].Box) != 3 || cands[0].Vertices != 4 {
				t.Fatalf("expected three valid of four reported vertices, got %+v", cands)
			}
			text, pos := Merge(cands, image.Pt(1, 2))
			if text != "hi" || pos != image.Pt(6, 7) {
				t.Fatalf("merge = %q %v, want \"hi\" (6,7)", text, pos)
			}
		})
	}
}

type stubExecutor struct {
	output  []byte
	err     error
	binary  string
	args    []string
	sawFile bool
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	s.binary = binary
	s.args = append([]string(nil), args...)
	for _, arg := range args {
		if strings.HasSuffix(arg, ".png") {
			if _, err := os.Stat(arg); err == nil {
				s.sawFile = true
			}
		}
	}
	return s.output, s.err
}

func TestPaddleEngineRecognize(t *testing.T) {
	exec := &stubExecutor{output: []byte(`[[[[0,0],[10,0],[10,5],[0,5]],["字幕",0.9]]]`)}
	engine := NewPaddleEngine("paddleocr-json", []string{"--lang", "ch"}, WithExecutor(exec), WithTempDir(t.TempDir()))

	cands, err := engine.Recognize(context.Background(), image.NewRGBA(image.Rect(0, 0, 8, 8)))
	if err != nil {
		t.Fatalf("Recognize returned error: %v", err)
	}
	if len(cands) != 1 || cands[0].Text != "字幕" {
		t.Fatalf("unexpected candidates %+v", cands)
	}
	if exec.binary != "paddleocr-json" || exec.args[0] != "--lang" {
		t.Fatalf("unexpected invocation %s %v", exec.binary, exec.args)
	}
	if !exec.sawFile {
		t.Fatal("expected image file to exist during recognition")
	}
	if _, err := os.Stat(exec.args[len(exec.args)-1]); !os.IsNotExist(err) {
		t.Fatalf("expected temp image removed, stat err=%v", err)
	}
	if engine.Key() != "paddle:paddleocr-json --lang ch" {
		t.Fatalf("unexpected key %q", engine.Key())
	}
}

func TestPaddleEngineProcessFailure(t *testing.T) {
	engine := NewPaddleEngine("paddleocr-json", nil, WithExecutor(&stubExecutor{err: errors.New("exit status 2")}), WithTempDir(t.TempDir()))
	_, err := engine.Recognize(context.Background(), image.NewRGBA(image.Rect(0, 0, 2, 2)))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestPaddleEngineMalformedOutputIsNotAnError(t *testing.T) {
	engine := NewPaddleEngine("paddleocr-json", nil, WithExecutor(&stubExecutor{output: []byte("garbage")}), WithTempDir(t.TempDir()))
	cands, err := engine.Recognize(context.Background(), image.NewRGBA(image.Rect(0, 0, 2, 2)))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(cands) != 0 {
		t.Fatalf("expected no candidates, got %+v", cands)
	}
}
