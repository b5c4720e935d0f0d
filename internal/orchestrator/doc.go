// Package orchestrator координирует прогон агентов по делу онбординга.
//
// Прогон фазовый: compliance и logistics идут параллельно (они независимы
// и детерминированы), затем строго последовательно hris, workplace и it —
// зависимые исполнители не считаются потокобезопасными друг с другом.
// Агенты с материализованными побочными эффектами (hris, workplace, it)
// пропускаются по идемпотентным предикатам над уже сохранёнными выходами —
// повторный прогон не создаёт дубликатов записей и тикетов.
//
// На одно дело допускается один активный прогон: параллельный запуск
// отклоняется с ErrRunInProgress, очереди прогонов нет.
package orchestrator
