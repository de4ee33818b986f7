package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakePages simula uma tabela com total linhas e registra as janelas pedidas.
func fakePages(total int, calls *[][2]int) func(limit, offset int) ([]int, error) {
	return func(limit, offset int) ([]int, error) {
		*calls = append(*calls, [2]int{limit, offset})

		if offset >= total {
			return []int{}, nil
		}
		end := offset + limit
		if end > total {
			end = total
		}
		page := make([]int, 0, end-offset)
		for i := offset; i < end; i++ {
			page = append(page, i)
		}
		return page, nil
	}
}

func TestCollectPagesThreeWindows(t *testing.T) {
	var calls [][2]int

	all, err := collectPages(1000, fakePages(2500, &calls))

	assert.NoError(t, err)
	assert.Len(t, all, 2500)

	// 2500 linhas com janela de 1000 = exatamente 3 fetches: a página
	// curta (500) encerra o loop sem uma quarta chamada vazia
	assert.Equal(t, [][2]int{{1000, 0}, {1000, 1000}, {1000, 2000}}, calls)

	// Ordem preservada entre janelas
	assert.Equal(t, 0, all[0])
	assert.Equal(t, 999, all[999])
	assert.Equal(t, 1000, all[1000])
	assert.Equal(t, 2499, all[2499])
}

func TestCollectPagesExactMultipleNeedsEmptyPage(t *testing.T) {
	var calls [][2]int

	all, err := collectPages(1000, fakePages(2000, &calls))

	assert.NoError(t, err)
	assert.Len(t, all, 2000)
	// Total múltiplo exato da janela: a última página vem vazia
	assert.Equal(t, [][2]int{{1000, 0}, {1000, 1000}, {1000, 2000}}, calls)
}

func TestCollectPagesEmptyResult(t *testing.T) {
	var calls [][2]int

	all, err := collectPages(1000, fakePages(0, &calls))

	assert.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, [][2]int{{1000, 0}}, calls)
}

func TestCollectPagesPropagatesError(t *testing.T) {
	boom := errors.New("conexão caiu")
	count := 0

	_, err := collectPages(1000, func(limit, offset int) ([]int, error) {
		count++
		if offset >= 1000 {
			return nil, boom
		}
		page := make([]int, limit)
		return page, nil
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, count)
}
