// Package session guarda o estado do formulário entre requisições, pela chave
// do cookie de registro, junto com o lock por sessão e as reservas que fazem a
// criação e a conclusão acontecerem no máximo uma vez.
package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xavierca1/dsx-leads/internal/wizard"
)

var ErrNotFound = errors.New("sessão de registro não encontrada")

// Guard nomeia um efeito colateral que a sessão só pode disparar uma vez.
type Guard string

const (
	GuardCreate   Guard = "create"
	GuardFinalize Guard = "finalize"
)

func encode(st *wizard.State) ([]byte, error) {
	raw, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("erro ao serializar sessão: %w", err)
	}
	return raw, nil
}

func decode(raw []byte) (*wizard.State, error) {
	var st wizard.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("sessão corrompida: %w", err)
	}
	return &st, nil
}
