package services

import (
	"math"

	"github.com/danuarta/billiard-pos/models"
)

const (
	// Grace period sebelum biaya meja mulai dihitung (menit)
	FeeGraceMinutes = 5.0
	// Pembulatan blok billing untuk mode open time (menit)
	FeeBlockMinutes = 30.0
	// Fee minimal untuk money game = 10% dari taruhan
	MoneyGameFloorRate = 0.10
)

// FeeRequest berisi semua input perhitungan biaya meja. Sengaja berupa value
// struct tanpa referensi DB supaya fungsi di bawah tetap pure.
type FeeRequest struct {
	ElapsedMinutes float64
	HourlyRate     float64
	Mode           string // models.SessionModeOpenTime / models.SessionModeFixedDuration
	TargetMinutes  int    // hanya dipakai untuk fixed_duration
	Prepaid        bool
	IsMoneyGame    bool
	BetAmount      float64
}

// CalculateTableFee menghitung biaya meja final. Fungsi ini dipakai dua
// tempat: estimasi live di kasir dan settlement saat sesi ditutup. Keduanya
// HARUS lewat fungsi ini, jangan duplikasi rumus di tempat lain.
//
// open_time: 5 menit pertama gratis, setelah itu dibulatkan ke atas per blok
// 30 menit (setengah tarif per blok).
// fixed_duration: tarif dasar sesuai durasi paket, kelebihan menit dihitung
// per menit tanpa pembulatan. Kalau sesi prepaid, tarif dasar sudah dibayar
// di muka jadi hanya kelebihannya yang ditagih.
// money game: fee minimal 10% dari taruhan, diterapkan paling akhir.
func CalculateTableFee(req FeeRequest) float64 {
	var fee float64

	switch req.Mode {
	case models.SessionModeFixedDuration:
		base := float64(req.TargetMinutes) / 60.0 * req.HourlyRate
		overtime := 0.0
		if req.ElapsedMinutes > float64(req.TargetMinutes) {
			overtime = (req.ElapsedMinutes - float64(req.TargetMinutes)) * (req.HourlyRate / 60.0)
		}
		if req.Prepaid {
			fee = overtime
		} else {
			fee = base + overtime
		}
	default: // open_time
		if req.ElapsedMinutes > FeeGraceMinutes {
			blocks := math.Ceil(req.ElapsedMinutes / FeeBlockMinutes)
			fee = blocks * 0.5 * req.HourlyRate
		}
	}

	if req.IsMoneyGame && req.BetAmount > 0 {
		floor := req.BetAmount * MoneyGameFloorRate
		if fee < floor {
			fee = floor
		}
	}

	return math.Round(fee*100) / 100
}

// SessionFeeRequest menyusun FeeRequest dari sebuah sesi + tarif meja.
// Override tarif di sesi menang atas tarif meja.
func SessionFeeRequest(session *models.Session, tableRate float64, elapsedMinutes float64) FeeRequest {
	rate := tableRate
	if session.HourlyRateOverride != nil {
		rate = *session.HourlyRateOverride
	}
	target := 0
	if session.TargetMinutes != nil {
		target = *session.TargetMinutes
	}
	return FeeRequest{
		ElapsedMinutes: elapsedMinutes,
		HourlyRate:     rate,
		Mode:           session.Mode,
		TargetMinutes:  target,
		Prepaid:        session.Prepaid,
		IsMoneyGame:    session.IsMoneyGame,
		BetAmount:      session.BetAmount,
	}
}
