package message

// Built-in template sources. The "id" entries are the neutral fallback;
// the "sasak" entries keep the Sasak-Indonesian phrasing used around
// Central Lombok posyandu.
var builtinTemplates = map[key]string{
	{KindReminder, DefaultLocale}: `[Imunisasi] Ibu {{.MotherName}}, jadwal imunisasi {{.BabyName}} ({{.DoseLabel}}) pada {{.DueDate}} di Puskesmas {{.Village}}. Mohon hadir tepat waktu.`,

	{KindReminder, LocaleSasak}: `[Lombok Tengah] Bung {{.MotherName}}, jadwal imunisasi {{.BabyName}} ({{.DoseLabel}}) tanggal {{.DueDate}} di Puskesmas {{.Village}}.
"Anak selamat, desa makmur" - Pepatah Sasak
Tepak nane!`,

	{KindOverdueAlert, DefaultLocale}: `[PENTING] Imunisasi {{.DoseLabel}} untuk {{.BabyName}} sudah lewat jadwal ({{.DueDate}}). Segera ke Puskesmas {{.Village}} atau hubungi bidan desa.`,

	{KindOverdueAlert, LocaleSasak}: `[PENTING - Lombok Tengah] Anak dedare {{.BabyName}} belum imunisasi {{.DoseLabel}} (jadwal: {{.DueDate}}).
Segera ke Puskesmas {{.Village}} atau hubungi bidan desa.
"Belek imunisasi te anak kite"`,

	{KindRegistrationSuccess, DefaultLocale}: `[Imunisasi] Terima kasih! {{.BabyName}} (ID: {{.BabyID}}) telah terdaftar.
Jadwal Imunisasi:
{{range .ScheduleLines}}{{.}}
{{end}}Simpan ID ini untuk cek jadwal: INFO {{.BabyID}}`,

	{KindRegistrationSuccess, LocaleSasak}: `[Lombok Tengah - Sistem Imunisasi]
Matur suksma! Anak dedare {{.BabyName}} (ID: {{.BabyID}}) telah terdaftar.
Jadwal Imunisasi:
{{range .ScheduleLines}}{{.}}
{{end}}"Anak sehat, desa kuat" - Adat Sasak
Menangi le ngingatang!`,

	{KindAlreadyRegistered, DefaultLocale}: `Bayi {{.BabyName}} sudah terdaftar dengan ID: {{.BabyID}}.
Ketik INFO {{.BabyID}} untuk info jadwal.`,

	{KindReportSuccess, DefaultLocale}: `Laporan diterima. Terima kasih {{.WorkerName}}!
Imunisasi {{.DoseCode}} untuk {{.BabyName}} telah tercatat.`,

	{KindReportSuccess, LocaleSasak}: `Laporan diterima. Matur suksma {{.WorkerName}}!
Imunisasi {{.DoseCode}} untuk {{.BabyName}} telah tercatat.`,

	{KindInfoResponse, DefaultLocale}: `[Info Bayi {{.BabyName}} - {{.BabyID}}]
Imunisasi selesai: {{.CompletedCount}}
Jadwal mendatang:
{{range .ScheduleLines}}{{.}}
{{end}}`,

	{KindInfoResponse, LocaleSasak}: `[Info Bayi {{.BabyName}} - {{.BabyID}}]
Imunisasi selesai: {{.CompletedCount}}
Jadwal mendatang:
{{range .ScheduleLines}}{{.}}
{{end}}"Belek imunisasi, anak waras" - Adat Sasak`,

	{KindHelp, DefaultLocale}: `[Panduan SMS Sistem Imunisasi]
DAFTAR NAMA_IBU;NAMA_BAYI;TGL_LAHIR;DESA
Contoh: DAFTAR SITI;AISHA;12-05-2024;PRAYA
LAPOR ID_BAYI JENIS
Contoh: LAPOR LT-001 BCG
INFO ID_BAYI
Contoh: INFO LT-001
BANTUAN - tampilkan panduan ini`,

	{KindInvalidFormat, DefaultLocale}: `Format SMS tidak tepat.
Ketik HELP atau BANTUAN untuk panduan.
Contoh: DAFTAR SITI;AISHA;12-05-2024;PRAYA`,

	{KindUnauthorizedReporter, DefaultLocale}: `Nomor ini tidak terdaftar sebagai petugas kesehatan.
Hubungi admin untuk registrasi petugas.`,

	{KindScheduleNotFound, DefaultLocale}: `Jadwal imunisasi {{.DoseCode}} untuk bayi {{.BabyID}} tidak ditemukan atau sudah selesai.`,

	{KindBabyNotFound, DefaultLocale}: `Bayi dengan ID {{.BabyID}} tidak ditemukan.
Pastikan ID benar atau lakukan pendaftaran dulu.`,

	{KindUnauthorizedInfo, DefaultLocale}: `Anda tidak berhak mengakses informasi ini.
Hanya orang tua atau petugas kesehatan yang dapat mengakses.`,
}
