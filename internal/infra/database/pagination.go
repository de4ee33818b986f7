package database

// collectPages concatena janelas de offset/limit até a primeira página
// curta, que sinaliza o fim do resultado. Todos os fetches grandes
// passam por aqui para ninguém esquecer a paginação de novo.
func collectPages[T any](window int, fetch func(limit, offset int) ([]T, error)) ([]T, error) {
	var all []T
	for offset := 0; ; offset += window {
		items, err := fetch(window, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		if len(items) < window {
			return all, nil
		}
	}
}
