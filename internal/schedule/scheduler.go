package schedule

import (
	"crypto/rand"
	"math/big"
	"time"

	"schoolradio/internal/models"
)

// Shuffle permutes tracks in place with an unbiased Fisher-Yates shuffle.
func Shuffle(tracks []models.Track) {
	n := len(tracks)
	for i := n - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			break
		}
		j := int(jBig.Int64())
		tracks[i], tracks[j] = tracks[j], tracks[i]
	}
}

// InitializeState builds a fresh shared record from a catalog snapshot:
// shuffled playlist, empty played set, origin at now.
func InitializeState(tracks []models.Track, now time.Time) *models.PlaylistState {
	playlist := make([]models.Track, len(tracks))
	copy(playlist, tracks)
	Shuffle(playlist)

	ms := now.UnixMilli()
	return &models.PlaylistState{
		Playlist:         playlist,
		OriginMs:         ms,
		PlayedTracks:     []int{},
		LastCycleStartMs: ms,
		IsPlaying:        true,
	}
}

// Reshuffle starts the next cycle: shuffles the playlist again, clears the
// played set and stamps the cycle start. Callers must guard against
// redundant invocation by re-reading the shared record and re-checking
// CycleComplete after their own write lands; Reshuffle itself is just the
// mutation.
//
// Note the played set never drives which track the resolver picks. It only
// decides when a cycle is over. Reshuffling mid-listen is safe because the
// next resolution simply lands somewhere in the new order.
func Reshuffle(state *models.PlaylistState, now time.Time) {
	Shuffle(state.Playlist)
	state.PlayedTracks = []int{}
	state.LastCycleStartMs = now.UnixMilli()
}
