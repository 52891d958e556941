// Package dateidea holds the fixed list of ideas offered by the date roulette.
package dateidea

import "math/rand/v2"

var ideas = []string{
	"Пікнік на даху з пледом і какао",
	"Вечір настолок, той хто програв готує сніданок",
	"Прогулянка нічним містом без телефонів",
	"Готуємо разом страву, яку ще ніколи не куштували",
	"Кіномарафон під ковдрою з попкорном",
	"Караоке вдвох, пісні обирає партнер",
	"Фотопрогулянка: 20 кадрів одне одного",
	"Спа-вечір вдома: маски, свічки, масаж",
	"Квест по місту з підказками в кав'ярнях",
	"Зустрічаємо світанок з термосом чаю",
	"Уроки танців на кухні під улюблені треки",
	"Ввечері читаємо одне одному вголос",
}

// Picker chooses ideas. The zero value uses the global random source.
type Picker struct {
	intn func(n int) int
}

// NewPicker returns a picker driven by intn; nil means math/rand.
func NewPicker(intn func(n int) int) *Picker {
	return &Picker{intn: intn}
}

// Random returns a random idea and its index.
func (p *Picker) Random() (int, string) {
	intn := rand.IntN
	if p != nil && p.intn != nil {
		intn = p.intn
	}

	i := intn(len(ideas))
	return i, ideas[i]
}

// Idea returns the idea at i, for example one echoed back in a button payload.
func Idea(i int) (string, bool) {
	if i < 0 || i >= len(ideas) {
		return "", false
	}
	return ideas[i], true
}

// Count is the number of known ideas.
func Count() int {
	return len(ideas)
}
