// Package sounds serves the sound board catalog. The catalog is static;
// the audio files themselves ship with the frontend.
package sounds

import (
	"net/http"

	"github.com/go-chi/render"
)

type (
	Sound struct {
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		File        string  `json:"file"`
		Description string  `json:"description"`
		Duration    float64 `json:"duration"`
		Category    string  `json:"category"`
		Loop        bool    `json:"loop,omitempty"`
		Volume      float64 `json:"volume,omitempty"`
	}

	ListResponse struct {
		Success bool    `json:"success"`
		Sounds  []Sound `json:"sounds"`
		Count   int     `json:"count"`
	}
)

const (
	CategoryAnimals     = "animals"
	CategoryInstruments = "instruments"
	CategoryEffects     = "effects"
	CategoryBackground  = "background"
)

var catalog = []Sound{
	{ID: "dog", Name: "いぬ", File: "/sounds/animals/dog.mp3", Description: "わんわん", Duration: 1.5, Category: CategoryAnimals},
	{ID: "cat", Name: "ねこ", File: "/sounds/animals/cat.mp3", Description: "にゃーにゃー", Duration: 1.5, Category: CategoryAnimals},
	{ID: "bird", Name: "とり", File: "/sounds/animals/bird.mp3", Description: "ちゅんちゅん", Duration: 2.0, Category: CategoryAnimals},
	{ID: "cow", Name: "うし", File: "/sounds/animals/cow.mp3", Description: "もーもー", Duration: 2.0, Category: CategoryAnimals},
	{ID: "piano", Name: "ピアノ", File: "/sounds/instruments/piano.mp3", Description: "ポローン", Duration: 2.0, Category: CategoryInstruments},
	{ID: "drum", Name: "たいこ", File: "/sounds/instruments/drum.mp3", Description: "ドンドン", Duration: 1.0, Category: CategoryInstruments},
	{ID: "bell", Name: "すず", File: "/sounds/instruments/bell.mp3", Description: "リンリン", Duration: 2.5, Category: CategoryInstruments},
	{ID: "flute", Name: "フルート", File: "/sounds/instruments/flute.mp3", Description: "フワー", Duration: 3.0, Category: CategoryInstruments},
	{ID: "pop", Name: "ポップ", File: "/sounds/effects/pop.mp3", Description: "ポップ音", Duration: 0.5, Category: CategoryEffects},
	{ID: "swoosh", Name: "スウッシュ", File: "/sounds/effects/swoosh.mp3", Description: "スウッシュ音", Duration: 0.8, Category: CategoryEffects},
	{ID: "chime", Name: "チャイム", File: "/sounds/effects/chime.mp3", Description: "チーン", Duration: 1.5, Category: CategoryEffects},
	{ID: "laugh", Name: "わらい", File: "/sounds/effects/laugh.mp3", Description: "わはは", Duration: 2.0, Category: CategoryEffects},
	{ID: "tap", Name: "タップ", File: "/sounds/effects/tap.mp3", Description: "タップ音", Duration: 0.3, Category: CategoryEffects},
	{ID: "success", Name: "せいこう", File: "/sounds/effects/success.mp3", Description: "できました", Duration: 1.5, Category: CategoryEffects},
	{ID: "encourage", Name: "おうえん", File: "/sounds/effects/encourage.mp3", Description: "がんばって", Duration: 2.0, Category: CategoryEffects},
	{ID: "album-bgm", Name: "アルバムBGM", File: "/sounds/background/album-bgm.mp3", Description: "やさしい音楽", Duration: 10.0, Category: CategoryBackground, Loop: true, Volume: 0.3},
	{ID: "birthday-greeting", Name: "たんじょうびのうた", File: "/sounds/background/birthday-greeting.mp3", Description: "おめでとう", Duration: 3.0, Category: CategoryBackground},
	{ID: "birthday-fanfare", Name: "ファンファーレ", File: "/sounds/background/birthday-fanfare.mp3", Description: "たんたんたーん", Duration: 5.0, Category: CategoryBackground},
	{ID: "birthday-countdown", Name: "カウントダウン", File: "/sounds/background/birthday-countdown.mp3", Description: "いち、にー、さん", Duration: 4.0, Category: CategoryBackground},
}

func validCategory(c string) bool {
	switch c {
	case CategoryAnimals, CategoryInstruments, CategoryEffects, CategoryBackground:
		return true
	}
	return false
}

// HandleList returns the catalog, optionally filtered by ?category=.
func HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := r.URL.Query().Get("category")
		if category == "" {
			render.JSON(w, r, ListResponse{Success: true, Sounds: catalog, Count: len(catalog)})
			return
		}

		if !validCategory(category) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]any{"success": false, "message": "不明なカテゴリです"})
			return
		}

		filtered := make([]Sound, 0, len(catalog))
		for _, s := range catalog {
			if s.Category == category {
				filtered = append(filtered, s)
			}
		}
		render.JSON(w, r, ListResponse{Success: true, Sounds: filtered, Count: len(filtered)})
	}
}
