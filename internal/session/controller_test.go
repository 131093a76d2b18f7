package session

import (
	"errors"
	"testing"
	"time"

	"github.com/hazadus/go-annotator/internal/comment"
	"github.com/hazadus/go-annotator/internal/playback"
	"github.com/hazadus/go-annotator/internal/playback/playbacktest"
	"github.com/hazadus/go-annotator/internal/store"
	"github.com/hazadus/go-annotator/internal/utils"
)

// newTestController создает контроллер с хранилищем в памяти и управляемыми адаптерами
func newTestController(t *testing.T, backend store.Backend) (*Controller, *store.CommentStore, *[]*playbacktest.Fake) {
	t.Helper()
	created := &[]*playbacktest.Fake{}
	commentStore := store.NewCommentStore(backend, nil)
	return NewController(commentStore, playbacktest.Factory(created), nil), commentStore, created
}

// selectReady выбирает файл и доводит адаптер до готовности
func selectReady(t *testing.T, c *Controller, created *[]*playbacktest.Fake, path string, duration time.Duration) *playbacktest.Fake {
	t.Helper()
	gen, err := c.SelectAudio(path)
	if err != nil {
		t.Fatalf("Ошибка выбора файла: %v", err)
	}
	fake := (*created)[len(*created)-1]
	if !c.HandleEvent(gen, fake.BecomeReady(duration)) {
		t.Fatal("Событие Ready должно относиться к активному адаптеру")
	}
	return fake
}

func TestInitialState(t *testing.T) {
	c, _, _ := newTestController(t, store.NewMemory())

	if c.Identity() != "" {
		t.Errorf("Начальное имя файла должно быть пустым, получено %q", c.Identity())
	}
	if len(c.Comments()) != 0 {
		t.Error("Начальный список комментариев должен быть пустым")
	}
	if c.Adapter() != nil {
		t.Error("Адаптер не должен создаваться до выбора файла")
	}
	if c.Phase() != playback.Unloaded {
		t.Errorf("Ожидалось состояние unloaded, получено %s", c.Phase())
	}
}

func TestSelectAudio(t *testing.T) {
	c, _, created := newTestController(t, store.NewMemory())

	if _, err := c.SelectAudio("  "); !errors.Is(err, ErrNoFile) {
		t.Errorf("Ожидалась ErrNoFile, получено %v", err)
	}

	gen, err := c.SelectAudio("/music/albums/song.mp3")
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if c.Identity() != "song.mp3" {
		t.Errorf("Ожидалось имя song.mp3, получено %q", c.Identity())
	}
	if c.Phase() != playback.Loading {
		t.Errorf("Ожидалось состояние loading, получено %s", c.Phase())
	}
	if len(*created) != 1 || (*created)[0].Path() != "/music/albums/song.mp3" {
		t.Fatalf("Адаптер должен загрузить выбранный файл")
	}

	second, _ := c.SelectAudio("/music/other.mp3")
	if second == gen {
		t.Error("Каждый выбор должен получать новый номер")
	}
	if !(*created)[0].Closed() {
		t.Error("Предыдущий адаптер должен быть закрыт")
	}
}

func TestCommentsLoadOnlyOnReady(t *testing.T) {
	backend := store.NewMemory()
	c, s, created := newTestController(t, backend)
	_ = s.Save("song.mp3", []comment.Comment{{ID: "1", Timestamp: 3, Text: "saved"}})

	gen, _ := c.SelectAudio("song.mp3")
	if len(c.Comments()) != 0 {
		t.Error("Комментарии не должны загружаться до события Ready")
	}

	c.HandleEvent(gen, (*created)[0].BecomeReady(time.Minute))
	if got := c.Comments(); len(got) != 1 || got[0].Text != "saved" {
		t.Errorf("После Ready ожидался сохраненный комментарий, получено %v", got)
	}
}

func TestReadyFiresOncePerSelection(t *testing.T) {
	c, s, created := newTestController(t, store.NewMemory())

	fake := selectReady(t, c, created, "song.mp3", time.Minute)
	if _, err := c.AddComment("in memory"); err != nil {
		t.Fatalf("Ошибка добавления: %v", err)
	}

	// Подменяем сохраненные данные: повторный Ready не должен перезагружать список
	_ = s.Save("song.mp3", nil)
	c.HandleEvent(c.Generation(), fake.BecomeReady(time.Minute))

	if len(c.Comments()) != 1 {
		t.Errorf("Повторный Ready не должен перезагружать комментарии, получено %v", c.Comments())
	}
}

func TestStaleEventsIgnored(t *testing.T) {
	c, s, created := newTestController(t, store.NewMemory())
	_ = s.Save("a.mp3", []comment.Comment{{ID: "1", Timestamp: 1, Text: "from a"}})

	genA, _ := c.SelectAudio("a.mp3")
	fakeA := (*created)[0]
	genB, _ := c.SelectAudio("b.mp3")

	if c.HandleEvent(genA, fakeA.BecomeReady(time.Minute)) {
		t.Error("Событие закрытого адаптера должно игнорироваться")
	}
	if len(c.Comments()) != 0 {
		t.Errorf("Комментарии файла a.mp3 не должны попасть в b.mp3: %v", c.Comments())
	}
	if c.Phase() != playback.Loading {
		t.Errorf("Состояние b.mp3 не должно меняться, получено %s", c.Phase())
	}

	if !c.HandleEvent(genB, (*created)[1].BecomeReady(time.Minute)) {
		t.Error("Событие активного адаптера должно применяться")
	}
}

func TestAddComment(t *testing.T) {
	c, s, created := newTestController(t, store.NewMemory())

	if _, err := c.AddComment("no audio"); !errors.Is(err, ErrNoAudio) {
		t.Errorf("Без файла ожидалась ErrNoAudio, получено %v", err)
	}

	c.SelectAudio("song.mp3")
	if _, err := c.AddComment("still loading"); !errors.Is(err, ErrNoAudio) {
		t.Errorf("До готовности ожидалась ErrNoAudio, получено %v", err)
	}

	fake := (*created)[0]
	c.HandleEvent(c.Generation(), fake.BecomeReady(2*time.Minute))
	fake.SetPosition(42*time.Second + 500*time.Millisecond)

	added, err := c.AddComment("  припев  ")
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if added.Timestamp != 42.5 || added.Text != "припев" {
		t.Errorf("Неожиданный комментарий: %+v", added)
	}

	stored, _ := s.Load("song.mp3")
	if len(stored) != 1 || !stored[0].Same(42.5, "припев") {
		t.Errorf("Хранилище должно содержать добавленный комментарий, получено %v", stored)
	}
}

func TestAddEmptyCommentDoesNotMutate(t *testing.T) {
	c, s, created := newTestController(t, store.NewMemory())
	selectReady(t, c, created, "song.mp3", time.Minute)

	for _, text := range []string{"", "   ", "\t\n"} {
		if _, err := c.AddComment(text); !errors.Is(err, ErrEmptyComment) {
			t.Errorf("AddComment(%q): ожидалась ErrEmptyComment, получено %v", text, err)
		}
	}
	if len(c.Comments()) != 0 {
		t.Errorf("Пустые комментарии не должны добавляться, получено %v", c.Comments())
	}
	if ids, _ := s.Identities(); len(ids) != 0 {
		t.Errorf("Пустые комментарии не должны сохраняться, в хранилище %v", ids)
	}
}

func TestDeleteComment(t *testing.T) {
	c, s, created := newTestController(t, store.NewMemory())
	_ = s.Save("song.mp3", []comment.Comment{
		{ID: "1", Timestamp: 5, Text: "dup"},
		{ID: "2", Timestamp: 5, Text: "dup"},
		{ID: "3", Timestamp: 5, Text: "other"},
		{ID: "4", Timestamp: 6, Text: "dup"},
	})
	selectReady(t, c, created, "song.mp3", time.Minute)

	removed, err := c.DeleteComment(5, "dup")
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if removed != 2 {
		t.Errorf("Ожидалось удаление 2 записей, удалено %d", removed)
	}
	if len(c.Comments()) != 2 {
		t.Errorf("Ожидалось 2 оставшихся комментария, получено %v", c.Comments())
	}

	removed, _ = c.DeleteComment(99, "dup")
	if removed != 0 || len(c.Comments()) != 2 {
		t.Errorf("Несовпадающий запрос не должен удалять записи")
	}

	stored, _ := s.Load("song.mp3")
	if len(stored) != 2 {
		t.Errorf("Хранилище должно содержать 2 записи, получено %v", stored)
	}
}

func TestDeleteCommentByID(t *testing.T) {
	c, s, created := newTestController(t, store.NewMemory())
	_ = s.Save("song.mp3", []comment.Comment{
		{ID: "1", Timestamp: 5, Text: "dup"},
		{ID: "2", Timestamp: 5, Text: "dup"},
	})
	selectReady(t, c, created, "song.mp3", time.Minute)

	ok, err := c.DeleteCommentByID("2")
	if err != nil || !ok {
		t.Fatalf("Ожидалось удаление по идентификатору, ok=%v err=%v", ok, err)
	}
	got := c.Comments()
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("Должен остаться только комментарий 1, получено %v", got)
	}

	ok, _ = c.DeleteCommentByID("missing")
	if ok {
		t.Error("Удаление несуществующего идентификатора должно вернуть false")
	}
}

func TestSwitchingFilesKeepsPartitions(t *testing.T) {
	c, _, created := newTestController(t, store.NewMemory())

	selectReady(t, c, created, "/x/A.mp3", time.Minute)
	c.AddComment("comment on A")

	selectReady(t, c, created, "/x/B.mp3", time.Minute)
	if len(c.Comments()) != 0 {
		t.Errorf("У B.mp3 не должно быть комментариев A.mp3: %v", c.Comments())
	}
	c.AddComment("comment on B")
	c.AddComment("another on B")

	selectReady(t, c, created, "/y/A.mp3", time.Minute)
	got := c.Comments()
	if len(got) != 1 || got[0].Text != "comment on A" {
		t.Errorf("Ожидались комментарии A.mp3, получено %v", got)
	}
}

func TestSeekToComment(t *testing.T) {
	c, _, created := newTestController(t, store.NewMemory())

	if err := c.SeekToComment(10); !errors.Is(err, ErrNotReady) {
		t.Errorf("Без файла ожидалась ErrNotReady, получено %v", err)
	}

	fake := selectReady(t, c, created, "song.mp3", 2*time.Minute)
	if err := c.SeekToComment(30); err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if len(fake.Seeks) != 1 || fake.Seeks[0] != 0.25 {
		t.Errorf("Ожидалась перемотка к 0.25, получено %v", fake.Seeks)
	}
	if fake.PlayCalls != 1 || c.Phase() != playback.Playing {
		t.Errorf("После перемотки должно начаться воспроизведение")
	}
	if c.Position() != 30*time.Second {
		t.Errorf("Ожидалась позиция 30s, получено %v", c.Position())
	}
}

func TestTogglePlayback(t *testing.T) {
	c, _, created := newTestController(t, store.NewMemory())

	if err := c.TogglePlayback(); err != nil {
		t.Errorf("Без адаптера переключение должно быть пустой операцией, получено %v", err)
	}

	c.SelectAudio("song.mp3")
	if err := c.TogglePlayback(); !errors.Is(err, ErrNotReady) {
		t.Errorf("До готовности ожидалась ErrNotReady, получено %v", err)
	}

	c.HandleEvent(c.Generation(), (*created)[0].BecomeReady(time.Minute))
	if err := c.TogglePlayback(); err != nil || c.Phase() != playback.Playing {
		t.Errorf("Ожидалось воспроизведение, phase=%s err=%v", c.Phase(), err)
	}
	if err := c.TogglePlayback(); err != nil || c.Phase() != playback.Paused {
		t.Errorf("Ожидалась пауза, phase=%s err=%v", c.Phase(), err)
	}
}

func TestPlaybackEvents(t *testing.T) {
	c, _, created := newTestController(t, store.NewMemory())
	fake := selectReady(t, c, created, "song.mp3", time.Minute)
	gen := c.Generation()

	c.HandleEvent(gen, playback.Event{Kind: playback.EventPlayState, Playing: true})
	if c.Phase() != playback.Playing {
		t.Errorf("Ожидалось состояние playing, получено %s", c.Phase())
	}
	c.HandleEvent(gen, playback.Event{Kind: playback.EventPlayState, Playing: false})
	if c.Phase() != playback.Paused {
		t.Errorf("Ожидалось состояние paused, получено %s", c.Phase())
	}
	c.HandleEvent(gen, fake.Finish())
	if c.Phase() != playback.Finished {
		t.Errorf("Ожидалось состояние finished, получено %s", c.Phase())
	}

	// После окончания комментарии по-прежнему можно добавлять
	if _, err := c.AddComment("outro"); err != nil {
		t.Errorf("Неожиданная ошибка после окончания: %v", err)
	}
}

func TestAdapterFailure(t *testing.T) {
	c, _, created := newTestController(t, store.NewMemory())
	gen, _ := c.SelectAudio("broken.mp3")

	failure := errors.New("decode error")
	c.HandleEvent(gen, (*created)[0].BecomeFailed(failure))

	if c.Phase() != playback.Failed {
		t.Errorf("Ожидалось состояние failed, получено %s", c.Phase())
	}
	if !errors.Is(c.Err(), failure) {
		t.Errorf("Ожидалась ошибка адаптера, получено %v", c.Err())
	}
	if _, err := c.AddComment("x"); !errors.Is(err, ErrNoAudio) {
		t.Errorf("После ошибки ожидалась ErrNoAudio, получено %v", err)
	}

	// Повторный выбор файла сбрасывает ошибку
	c.SelectAudio("ok.mp3")
	if c.Err() != nil || c.Phase() != playback.Loading {
		t.Errorf("Новый выбор должен сбрасывать ошибку, phase=%s err=%v", c.Phase(), c.Err())
	}
}

func TestLoadTimeout(t *testing.T) {
	c, _, created := newTestController(t, store.NewMemory())
	gen, _ := c.SelectAudio("slow.mp3")

	if c.HandleLoadTimeout(gen + 1) {
		t.Error("Таймаут чужого выбора должен игнорироваться")
	}
	if !c.HandleLoadTimeout(gen) {
		t.Fatal("Таймаут активной загрузки должен применяться")
	}
	if c.Phase() != playback.Failed || !errors.Is(c.Err(), ErrLoadTimeout) {
		t.Errorf("Ожидалось состояние failed с ErrLoadTimeout, phase=%s err=%v", c.Phase(), c.Err())
	}

	// Аудио, загрузившееся после таймаута, снова доступно
	c.HandleEvent(gen, (*created)[0].BecomeReady(time.Minute))
	if c.Phase() != playback.Ready || c.Err() != nil {
		t.Errorf("Ожидалось восстановление после позднего Ready, phase=%s err=%v", c.Phase(), c.Err())
	}

	if c.HandleLoadTimeout(gen) {
		t.Error("Таймаут после готовности должен игнорироваться")
	}
}

func TestCorruptRecordFallsBackToEmpty(t *testing.T) {
	backend := store.NewMemory()
	c, _, created := newTestController(t, backend)
	_ = backend.Set(store.Key("song.mp3"), "garbage")

	selectReady(t, c, created, "song.mp3", time.Minute)

	if len(c.Comments()) != 0 {
		t.Errorf("Ожидался пустой список, получено %v", c.Comments())
	}
	if !errors.Is(c.CommentsErr(), store.ErrCorruptRecord) {
		t.Errorf("Ожидалась ошибка ErrCorruptRecord, получено %v", c.CommentsErr())
	}
	raw, _, _ := backend.Get(store.Key("song.mp3"))
	if raw != "garbage" {
		t.Error("Поврежденная запись не должна перезаписываться до явного сохранения")
	}
}

// TestEndToEndScenario: два комментария сохраняются и видны в новой сессии
func TestEndToEndScenario(t *testing.T) {
	backend := store.NewMemory()

	first, _, created := newTestController(t, backend)
	fake := selectReady(t, first, created, "song.mp3", 120*time.Second)

	fake.SetPosition(0)
	if _, err := first.AddComment("intro"); err != nil {
		t.Fatalf("Ошибка добавления intro: %v", err)
	}
	fake.SetPosition(42 * time.Second)
	if _, err := first.AddComment("chorus"); err != nil {
		t.Fatalf("Ошибка добавления chorus: %v", err)
	}
	first.Close()

	second, _, created2 := newTestController(t, backend)
	selectReady(t, second, created2, "song.mp3", 120*time.Second)

	got := second.Comments()
	if len(got) != 2 {
		t.Fatalf("Ожидалось 2 комментария, получено %v", got)
	}
	want := []struct{ time, text string }{
		{"00:00", "intro"},
		{"00:42", "chorus"},
	}
	for i, w := range want {
		if utils.FormatTimestamp(got[i].Timestamp) != w.time || got[i].Text != w.text {
			t.Errorf("Позиция %d: ожидалось %s %s, получено %s %s",
				i, w.time, w.text, utils.FormatTimestamp(got[i].Timestamp), got[i].Text)
		}
	}
}

func TestSeekBy(t *testing.T) {
	c, _, created := newTestController(t, store.NewMemory())

	if err := c.SeekBy(5 * time.Second); !errors.Is(err, ErrNotReady) {
		t.Errorf("Без файла ожидалась ErrNotReady, получено %v", err)
	}

	fake := selectReady(t, c, created, "song.mp3", 100*time.Second)
	fake.SetPosition(10 * time.Second)

	if err := c.SeekBy(15 * time.Second); err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if c.Position() != 25*time.Second {
		t.Errorf("Ожидалась позиция 25s, получено %v", c.Position())
	}

	// Перемотка за начало ограничивается нулем
	if err := c.SeekBy(-time.Minute); err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if c.Position() != 0 {
		t.Errorf("Ожидалась позиция 0, получено %v", c.Position())
	}
	if fake.PlayCalls != 0 {
		t.Error("Перемотка не должна запускать воспроизведение")
	}
}
