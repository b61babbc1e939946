package game

// Arena - ступень рейтинга, открывается по количеству трофеев
type Arena struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	MinTrophies int    `json:"min_trophies"`
}

// отсортированы по возрастанию порога
var Arenas = []Arena{
	{ID: 1, Name: "Arena Bronze", MinTrophies: 0},
	{ID: 2, Name: "Arena Ouro", MinTrophies: 150},
	{ID: 3, Name: "Arena Prata", MinTrophies: 350},
	{ID: 4, Name: "Arena Diamante", MinTrophies: 600},
}

// ArenaFor возвращает старшую арену, доступную при данном рейтинге
func ArenaFor(rating int) Arena {
	current := Arenas[0]
	for _, a := range Arenas {
		if rating >= a.MinTrophies {
			current = a
		}
	}
	return current
}

// LevelFor - уровень профиля: каждая тысяча очков дает уровень
func LevelFor(points int) int {
	if points < 0 {
		return 1
	}
	return points/1000 + 1
}
