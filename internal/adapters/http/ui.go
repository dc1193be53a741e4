package http

// chatHTML is a minimal self-contained chat page for manual testing.
const chatHTML = `<!DOCTYPE html>
<html>
<head>
  <title>RefundFlow</title>
  <meta charset="utf-8">
  <style>
    body { font-family: system-ui, sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; }
    #log { border: 1px solid #ccc; border-radius: 6px; padding: 1rem; height: 420px; overflow-y: auto; }
    .user { color: #0a4d8c; margin: 0.4rem 0; }
    .assistant { color: #1a7a3a; margin: 0.4rem 0; white-space: pre-wrap; }
    form { display: flex; gap: 0.5rem; margin-top: 1rem; flex-wrap: wrap; }
    input[type=text], input[type=email] { flex: 1; padding: 0.5rem; }
    button { padding: 0.5rem 1rem; }
    #meta { color: #666; font-size: 0.85rem; margin-top: 0.5rem; }
  </style>
</head>
<body>
  <h1>RefundFlow</h1>
  <div id="log"></div>
  <form id="chat">
    <input type="text" id="message" placeholder="Describe your issue..." autofocus>
    <input type="email" id="email" placeholder="Email (optional)">
    <input type="file" id="image" accept="image/*">
    <button type="submit">Send</button>
  </form>
  <div id="meta"></div>
  <script>
    const sessionId = "web-" + Math.random().toString(36).slice(2, 10);
    const log = document.getElementById("log");
    const meta = document.getElementById("meta");

    function append(cls, text) {
      const div = document.createElement("div");
      div.className = cls;
      div.textContent = (cls === "user" ? "You: " : "Agent: ") + text;
      log.appendChild(div);
      log.scrollTop = log.scrollHeight;
    }

    document.getElementById("chat").addEventListener("submit", async (e) => {
      e.preventDefault();
      const message = document.getElementById("message").value.trim();
      const email = document.getElementById("email").value.trim();
      const image = document.getElementById("image").files[0];
      if (!message && !image && !email) return;

      if (message) append("user", message);
      const form = new FormData();
      form.append("session_id", sessionId);
      form.append("message", message);
      if (email) form.append("email", email);
      if (image) form.append("image", image);

      document.getElementById("message").value = "";
      document.getElementById("image").value = "";

      try {
        const resp = await fetch("/chat", { method: "POST", body: form });
        if (!resp.ok) {
          append("assistant", "Error: " + await resp.text());
          return;
        }
        const data = await resp.json();
        append("assistant", data.message);
        meta.textContent = "session " + data.session_id +
          " | stage " + data.current_node +
          " | intent " + (data.intent || "-") +
          " | status " + (data.refund_status || "pending");
      } catch (err) {
        append("assistant", "Request failed: " + err);
      }
    });
  </script>
</body>
</html>
`
