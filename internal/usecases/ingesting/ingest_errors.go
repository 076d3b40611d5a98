package ingesting

import "errors"

var (
	// ErrClientNotFound indica ingestão para um cliente inexistente
	ErrClientNotFound = errors.New("cliente não encontrado")

	// ErrUnparseableFile indica cabeçalho ausente, coluna obrigatória
	// faltando ou CSV ilegível; aborta antes de qualquer escrita
	ErrUnparseableFile = errors.New("arquivo não pôde ser interpretado")

	// ErrNoValidRows indica que o arquivo foi lido mas nenhuma linha passou
	// na normalização
	ErrNoValidRows = errors.New("nenhuma linha válida no arquivo")

	// ErrInvalidDateRange indica purge com intervalo invertido ou vazio
	ErrInvalidDateRange = errors.New("intervalo de datas inválido")
)
