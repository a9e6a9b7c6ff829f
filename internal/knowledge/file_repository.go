package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"atendente/internal/domain"
)

// FileRepository guarda a base num único documento JSON ou YAML.
type FileRepository struct {
	path string
}

// NewFileRepository cria um repositório para o arquivo informado. A extensão
// .yaml/.yml seleciona YAML; qualquer outra, JSON.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(r.path))
	return ext == ".yaml" || ext == ".yml"
}

// Load lê e decodifica o arquivo inteiro.
func (r *FileRepository) Load(ctx context.Context) (*domain.KnowledgeBase, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler base de conhecimento %s: %w", r.path, err)
	}

	var kb domain.KnowledgeBase
	if r.isYAML() {
		err = yaml.Unmarshal(data, &kb)
	} else {
		err = json.Unmarshal(data, &kb)
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao decodificar base de conhecimento %s: %w", r.path, err)
	}
	return &kb, nil
}

// Save reescreve o arquivo por inteiro. O conteúdo vai para um arquivo
// temporário no mesmo diretório e então substitui o original.
func (r *FileRepository) Save(ctx context.Context, kb *domain.KnowledgeBase) error {
	data, err := r.encode(kb)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".kb-*")
	if err != nil {
		return fmt.Errorf("erro ao criar arquivo temporário: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("erro ao gravar base de conhecimento: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("erro ao gravar base de conhecimento: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("erro ao substituir base de conhecimento %s: %w", r.path, err)
	}
	return nil
}

func (r *FileRepository) encode(kb *domain.KnowledgeBase) ([]byte, error) {
	if r.isYAML() {
		data, err := yaml.Marshal(kb)
		if err != nil {
			return nil, fmt.Errorf("erro ao converter base para YAML: %w", err)
		}
		return data, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(kb); err != nil {
		return nil, fmt.Errorf("erro ao converter base para JSON: %w", err)
	}
	return buf.Bytes(), nil
}
