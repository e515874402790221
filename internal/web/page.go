package web

// kioskPage is the single-page clock UI. It polls /api/v1/snapshot once a
// second and renders entirely client-side, so the clock keeps advancing
// even when schedule data is unavailable.
const kioskPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Prayer Times</title>
<style>
  body { margin:0; font-family:Georgia,serif; background:#1b3a2d; color:#f4ecd8;
         display:flex; flex-direction:column; align-items:center; min-height:100vh; }
  body.night { background:#0d1117; color:#9aa7b5; }
  #clock { font-size:6rem; margin-top:1.5rem; letter-spacing:.1em; }
  #dates { color:#c9bda0; margin-bottom:.5rem; }
  #special { color:#e0b84c; }
  #next { font-size:1.6rem; margin:1rem 0; }
  #next.approaching { color:#e0b84c; }
  #prayers { display:flex; gap:1.5rem; flex-wrap:wrap; justify-content:center; }
  .prayer { padding:1rem 1.5rem; border:1px solid #44604f; border-radius:.5rem; text-align:center; }
  .prayer.focused { border-color:#e0b84c; }
  .prayer.passed { opacity:.45; }
  #banner { display:none; position:fixed; top:0; left:0; right:0; padding:1rem;
            background:#e0b84c; color:#1b3a2d; text-align:center; font-size:1.4rem; }
  #error { display:none; color:#d66; margin-top:1rem; }
  #location { position:fixed; right:10px; bottom:10px; font-size:.9rem; color:#8a9; }
  button { background:none; border:1px solid #888; color:inherit; padding:.4rem 1rem;
           border-radius:.3rem; cursor:pointer; }
</style>
</head>
<body>
<div id="banner"></div>
<div id="clock">--:--:--</div>
<div id="dates"></div>
<div id="special"></div>
<div id="next"></div>
<div id="prayers"></div>
<div id="error">Failed to load prayer times. <button onclick="refresh()">Retry</button></div>
<div id="location"></div>
<script>
function refresh() { fetch('/api/v1/refresh', {method:'POST'}); }

function pad(n) { return String(n).padStart(2, '0'); }

function render(s) {
  const now = new Date(s.current_time);
  document.getElementById('clock').textContent =
    pad(now.getHours()) + ':' + pad(now.getMinutes()) + ':' + pad(now.getSeconds());

  document.body.classList.toggle('night', s.is_night_mode);

  let dates = s.gregorian_date || '';
  if (s.hijri_date) dates += (dates ? ' | ' : '') + s.hijri_date;
  document.getElementById('dates').textContent = dates;
  document.getElementById('special').textContent = s.special_day || '';
  document.getElementById('location').textContent = s.location || '';

  const next = document.getElementById('next');
  if (s.focused_prayer) {
    next.textContent = 'Next: ' + s.focused_prayer.name + ' @ ' + s.focused_prayer.local_time;
    next.classList.toggle('approaching', s.is_approaching);
  } else {
    next.textContent = 'All prayers done for today';
    next.classList.remove('approaching');
  }

  const box = document.getElementById('prayers');
  box.innerHTML = '';
  (s.prayers || []).forEach((p, i) => {
    const div = document.createElement('div');
    div.className = 'prayer';
    if (i === s.focused_index) div.classList.add('focused');
    if (i < s.focused_index) div.classList.add('passed');
    div.innerHTML = '<h2>' + p.name + '</h2><p>' + p.local_time + '</p>';
    box.appendChild(div);
  });

  const banner = document.getElementById('banner');
  if (s.banner) {
    banner.textContent = 'It is time for ' + s.banner;
    banner.style.display = 'block';
  } else {
    banner.style.display = 'none';
  }

  document.getElementById('error').style.display = s.last_error ? 'block' : 'none';
}

async function poll() {
  try {
    const resp = await fetch('/api/v1/snapshot');
    if (resp.ok) render(await resp.json());
  } catch (e) { /* keep the last rendered state; the clock resumes on reconnect */ }
}

poll();
setInterval(poll, 1000);
</script>
</body>
</html>
`
