package sessions

import "sync"

// Mode é o modo de atendimento em vigor.
type Mode int

const (
	Normal Mode = iota
	Developer
)

func (m Mode) String() string {
	if m == Developer {
		return "developer"
	}
	return "normal"
}

// Context guarda o modo de um único slot de sessão. Hoje existe um só para o
// processo inteiro; o roteador o recebe como dependência.
type Context struct {
	mu   sync.RWMutex // protege o acesso concorrente ao modo
	mode Mode
}

// New retorna um contexto em modo normal.
func New() *Context {
	return &Context{}
}

// Mode retorna o modo atual.
func (c *Context) Mode() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// IsDeveloper indica se o modo desenvolvedor está ativo.
func (c *Context) IsDeveloper() bool {
	return c.Mode() == Developer
}

// Set altera o modo e retorna o anterior.
func (c *Context) Set(m Mode) Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.mode
	c.mode = m
	return prev
}
